package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/spotify-release-radar/internal/auth"
)

func newLogoutCommand(d deps, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached Spotify token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, d, flags, true)
			if err != nil {
				return err
			}

			cache := auth.NewTokenCache(cfg.Spotify.TokenCache)
			if err := cache.Delete(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed cached token at %s\n", cache.Path())
			return nil
		},
	}
}
