package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	formskema "github.com/reoring/formskema"
)

// yamlReader converts a yaml.Node tree into JSON-like values. Working on
// nodes rather than decoding into interface{} keeps key positions available
// for duplicate reporting and keeps mapping keys as strings.
type yamlReader struct {
	opt      Options
	maxNodes int
	nodes    int
	// anchors currently being expanded
	expanding map[*yaml.Node]bool
}

// nodeBudget bounds the values materialized from a document. Without
// aliases a document cannot hold more nodes than about one per byte, so the
// derived budget only rejects alias expansion that outgrows the input.
func nodeBudget(opt Options, size int) int {
	if opt.MaxNodes > 0 {
		return opt.MaxNodes
	}
	return 2*size + 16
}

func decodeYAML(data []byte, opt Options) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(CodeParseError, "", "empty input", nil)
		}
		return nil, newError(CodeParseError, "", err.Error(), err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, newError(CodeParseError, "", "multiple documents are not supported", err)
	}
	r := &yamlReader{opt: opt, maxNodes: nodeBudget(opt, len(data)), expanding: map[*yaml.Node]bool{}}
	return r.node(&root, formskema.Path{}, 0)
}

func (r *yamlReader) node(n *yaml.Node, p formskema.Path, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return r.node(n.Content[0], p, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		if r.expanding[n.Alias] {
			return nil, newError(CodeParseError, p.String(), fmt.Sprintf("alias '%s' at line %d refers to itself", n.Value, n.Line), nil)
		}
		r.expanding[n.Alias] = true
		v, err := r.node(n.Alias, p, depth)
		delete(r.expanding, n.Alias)
		return v, err
	}

	r.nodes++
	if r.nodes > r.maxNodes {
		return nil, newError(CodeParseError, p.String(), fmt.Sprintf("more than %d values (alias expansion)", r.maxNodes), nil)
	}
	switch n.Kind {
	case yaml.MappingNode:
		if r.opt.MaxDepth > 0 && depth+1 > r.opt.MaxDepth {
			return nil, newError(CodeParseError, p.String(), "max depth exceeded", nil)
		}
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			kp := p.Field(key)
			if line, dup := first[key]; dup && r.opt.DuplicateKeys == DuplicateError {
				return nil, newError(CodeDuplicateKey, kp.String(),
					fmt.Sprintf("key '%s' at line %d duplicated (first at line %d)", key, k.Line, line), nil)
			}
			first[key] = k.Line
			val, err := r.node(v, kp, depth+1)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		if r.opt.MaxDepth > 0 && depth+1 > r.opt.MaxDepth {
			return nil, newError(CodeParseError, p.String(), "max depth exceeded", nil)
		}
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := r.node(c, p.Field(strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return nil, nil
}

// scalar maps resolved YAML tags onto the JSON value kinds. Numbers become
// json.Number so both readers produce the same tree.
func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return json.Number(strconv.FormatInt(i, 10))
		}
		// out of int64 range or not Go syntax (e.g. 1_000 under YAML 1.1)
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil && !math.IsInf(f, 0) {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return n.Value
}
