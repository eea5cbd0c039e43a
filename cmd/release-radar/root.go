package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/justestif/spotify-release-radar/internal/auth"
	"github.com/justestif/spotify-release-radar/internal/config"
	"github.com/justestif/spotify-release-radar/internal/logging"
	"github.com/justestif/spotify-release-radar/internal/radar"
	"github.com/justestif/spotify-release-radar/internal/release"
	"github.com/justestif/spotify-release-radar/internal/report"
	"github.com/justestif/spotify-release-radar/internal/spotify"
)

// deps holds the collaborators commands reach outside the process for.
type deps struct {
	connect   func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (radar.Spotify, error)
	lookupEnv func(key string) (string, bool)
	now       func() time.Time
}

func defaultDeps() deps {
	return deps{
		connect:   connectSpotify,
		lookupEnv: os.LookupEnv,
		now:       time.Now,
	}
}

// connectSpotify authenticates (reusing the cached token when possible) and
// returns the API wrapper.
func connectSpotify(ctx context.Context, cfg *config.Config, logger *slog.Logger) (radar.Spotify, error) {
	authenticator, err := auth.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := authenticator.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}
	return spotify.New(client, logger), nil
}

type rootFlags struct {
	configPath   string
	envFile      string
	clientID     string
	clientSecret string
	redirectURI  string
	timeout      int
	logLevel     string
	logFormat    string

	days   int
	public bool
}

func newRootCommand(d deps) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "release-radar",
		Short: "Create a playlist of new releases from the artists you follow",
		Long: `release-radar checks every artist you follow on Spotify for albums and
singles released in the last few days and collects their tracks into a new
playlist named "New Releases YYYY-MM-DD".`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRadar(cmd, d, flags)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&flags.envFile, "env-file", "", "Path to a .env file with Spotify credentials (default ./.env)")
	persistent.StringVar(&flags.clientID, "client-id", "", "Spotify client ID (overrides SPOTIFY_CLIENT_ID)")
	persistent.StringVar(&flags.clientSecret, "client-secret", "", "Spotify client secret (overrides SPOTIFY_CLIENT_SECRET)")
	persistent.StringVar(&flags.redirectURI, "redirect-uri", "", "OAuth redirect URI (default "+config.DefaultRedirectURI+")")
	persistent.IntVar(&flags.timeout, "timeout", 0, "Per-request timeout in seconds (default 20)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	persistent.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.Flags().IntVarP(&flags.days, "days", "d", release.DefaultDays, "Number of days to look back for releases")
	rootCmd.Flags().BoolVar(&flags.public, "public", false, "Make the playlist public (default private)")

	rootCmd.AddCommand(newLogoutCommand(d, flags))
	rootCmd.AddCommand(newConfigCommand(d, flags))

	return rootCmd
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// loadConfig resolves configuration for cmd, applying only the flags the
// user actually set.
func loadConfig(cmd *cobra.Command, d deps, flags *rootFlags, skipValidation bool) (*config.Config, error) {
	set := cmd.Flags().Changed
	var o config.Overrides
	if set("client-id") {
		o.ClientID = &flags.clientID
	}
	if set("client-secret") {
		o.ClientSecret = &flags.clientSecret
	}
	if set("redirect-uri") {
		o.RedirectURI = &flags.redirectURI
	}
	if set("timeout") {
		o.TimeoutSeconds = &flags.timeout
	}
	if set("log-level") {
		o.LogLevel = &flags.logLevel
	}
	if set("log-format") {
		o.LogFormat = &flags.logFormat
	}
	if set("days") {
		o.Days = &flags.days
	}
	if set("public") {
		o.Public = &flags.public
	}

	return config.Load(config.LoadOptions{
		ConfigPath:     flags.configPath,
		EnvFile:        flags.envFile,
		Overrides:      o,
		SkipValidation: skipValidation,
		LookupEnv:      d.lookupEnv,
	})
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	return logger, nil
}

func runRadar(cmd *cobra.Command, d deps, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, d, flags, false)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runID := uuid.NewString()
	logger.Debug("Starting release radar",
		"run_id", runID,
		"days", cfg.Radar.Days,
		"public", cfg.Radar.Public,
	)

	api, err := d.connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	outcome, err := radar.Run(ctx, api, radar.Options{
		Days:        cfg.Radar.Days,
		Public:      cfg.Radar.Public,
		ArtistDelay: cfg.ArtistDelay(),
		Logger:      logger,
		Now:         d.now,
	})
	if err != nil {
		return err
	}

	logger.Debug("Release radar finished",
		"run_id", runID,
		"tracks", outcome.TrackCount(),
		"duration", outcome.Duration.Round(time.Millisecond),
	)

	return report.Summary(cmd.OutOrStdout(), outcome.Playlist, outcome.Records)
}
