package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"veristone-hq/clarion/pkg/cli"
	"veristone-hq/clarion/pkg/config"
)

var validateFlags struct {
	env bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a Clarion configuration file without starting the server.

The validate command loads the configuration, applies defaults, and runs
the same validation the server runs at startup. It reports the first
problem found, or a summary of the effective configuration.

Examples:
  # Validate the default config
  clarion validate

  # Validate a specific file
  clarion validate --config /etc/clarion/config.yaml

  # Include CLARION_* environment overrides
  clarion validate --env`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.env, "env", false, "apply CLARION_* environment overrides before validating")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if validateFlags.env {
		cfg, err = config.LoadConfigWithEnvOverrides(cfgFile)
	} else {
		cfg, err = config.LoadConfig(cfgFile)
	}
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("✓ Configuration valid")
	fmt.Println()
	fmt.Printf("Server: %s\n", cfg.Server.Addr())
	fmt.Printf("Intake limit: %d bytes\n", cfg.Intake.MaxBytes)
	fmt.Printf("Upstream classifiers: %d\n", len(cfg.Upstreams))
	for _, u := range cfg.Upstreams {
		fmt.Printf("  - %s (%s)\n", u.Name, u.Endpoint)
	}
	fmt.Printf("Report archive: %s\n", enabledState(cfg.Storage.Enabled))
	if cfg.Storage.Enabled {
		fmt.Printf("  Path: %s\n", cfg.Storage.Path)
		fmt.Printf("  Retention: %d days\n", cfg.Storage.RetentionDays)
	}
	fmt.Printf("Report sink: %s\n", enabledState(cfg.Sink.Enabled))
	if cfg.Sink.Enabled {
		fmt.Printf("  Kind: %s\n", cfg.Sink.Kind)
	}
	fmt.Printf("Quota limits: %s\n", enabledState(cfg.Limits.Enabled))
	fmt.Printf("API key auth: %s\n", enabledState(cfg.Auth.Enabled))
	if cfg.Secrets.Dir != "" {
		fmt.Printf("Secrets directory: %s\n", cfg.Secrets.Dir)
	}
	fmt.Printf("Metrics: %s\n", enabledState(cfg.Metrics.Enabled))
	fmt.Printf("Tracing: %s\n", enabledState(cfg.Tracing.Enabled))

	return nil
}

func enabledState(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
