package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/internal/config"
)

type rootOptions struct {
	configPath string
	lang       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "formskema",
		Short: "formskema decodes and validates sign-up forms",
		Long: `formskema classifies a form document as unprocessable (structurally broken),
invalid (field rule violations) or a validated form.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "", "Message language (en, ja); overrides the config")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	cmd.AddCommand(newCheckCmd(opts), newSchemaCmd(), newServeCmd(opts))
	return cmd
}

// load resolves the configuration: file (or defaults), then flag overrides.
func (o *rootOptions) load() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if o.lang != "" {
		cfg.Language = o.lang
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	i18n.SetLanguage(cfg.Language)
	return cfg, nil
}
