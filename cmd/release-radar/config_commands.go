package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/spotify-release-radar/internal/config"
)

func newConfigCommand(d deps, flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, d, flags)
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets masked",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, d, flags)
		},
	})
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func showConfig(cmd *cobra.Command, d deps, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, d, flags, true)
	if err != nil {
		return err
	}

	encoded, err := cfg.Redacted().Encode()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, encoded)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "\n# not ready to run: %v\n", err)
	}
	return nil
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("%w: config file already exists at %s (use --overwrite to replace it)", errUsage, target)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			defaults := config.Default()
			encoded, err := defaults.Encode()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := os.WriteFile(target, []byte(encoded), 0o600); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote default configuration to %s\n", target)
			fmt.Fprintln(out, "Set client_id and client_secret (or export SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET) before running release-radar.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing configuration file")
	return cmd
}
