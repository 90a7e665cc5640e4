package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/internal/logging"
	"github.com/reoring/formskema/source"
)

const (
	headerUnprocessable = "The input form failed to parse with the following errors:"
	headerFormErrors    = "The input form failed validation with the following errors:"
	headerForm          = "The input form was successfully processed:"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate form documents and print the outcome",
		Long: `Reads each FILE (JSON or YAML, by extension or --format; "-" is stdin),
runs the form pipeline and prints the outcome.

Exit status is 0 when every input is a valid form, 1 when any input is
unprocessable or invalid, and 2 on I/O or configuration errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			val, err := cfg.Validator()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			failed := false
			for _, name := range args {
				if len(args) > 1 {
					fmt.Fprintf(w, "==> %s <==\n", name)
				}
				v, err := readInput(cmd, name, format, cfg.SourceOptions())
				if err != nil {
					var se *source.Error
					if !errors.As(err, &se) {
						return err
					}
					logger.Debug("input rejected", zap.String("file", name), zap.Error(err))
					failed = true
					if err := report(w, headerUnprocessable, sourceErrorJSON{Code: se.Code, Path: se.Path, Message: se.Message}); err != nil {
						return err
					}
					continue
				}
				out := val.ValidateForm(v)
				logger.Debug("form checked", zap.String("file", name), zap.Stringer("outcome", out.Kind()))
				if out.Kind() != formskema.OutcomeForm {
					failed = true
				}
				if err := reportOutcome(w, out); err != nil {
					return err
				}
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Input format (json, yaml); inferred from the file extension by default")
	return cmd
}

type sourceErrorJSON struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func readInput(cmd *cobra.Command, name, format string, opt source.Options) (any, error) {
	f, err := inputFormat(name, format)
	if err != nil {
		return nil, err
	}
	if name == "-" {
		return source.Read(cmd.InOrStdin(), f, opt)
	}
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer fh.Close()
	return source.Read(fh, f, opt)
}

func inputFormat(name, format string) (source.Format, error) {
	switch {
	case format != "":
		return source.ParseFormat(format)
	case name == "-":
		return source.FormatJSON, nil
	}
	return source.FormatFromPath(name)
}

func reportOutcome(w io.Writer, out formskema.Outcome) error {
	type section struct {
		header string
		value  any
	}
	s := formskema.Match(out,
		func(d *formskema.StructuralDefect) section { return section{headerUnprocessable, d} },
		func(vs formskema.Violations) section { return section{headerFormErrors, vs} },
		func(f formskema.ValidatedForm) section { return section{headerForm, f} },
	)
	return report(w, s.header, s.value)
}

func report(w io.Writer, header string, v any) error {
	b, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n  %s\n", header, b)
	return err
}
