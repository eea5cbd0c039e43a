// Package config loads release-radar settings from a TOML file, a .env file,
// the process environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	appDirName     = "release-radar"
	configFileName = "config.toml"
	tokenFileName  = "token.json"
	defaultEnvFile = ".env"
)

// DefaultRedirectURI uses explicit IPv4 loopback as required by Spotify for local development.
const DefaultRedirectURI = "http://127.0.0.1:8080/callback"

var (
	// ErrMissingCredentials is returned when the Spotify client id or secret is not set.
	ErrMissingCredentials = errors.New("missing Spotify credentials: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET, use --client-id/--client-secret, or provide a .env file")

	// ErrInvalid is returned when a setting has an unusable value.
	ErrInvalid = errors.New("invalid configuration")
)

// Spotify contains API credentials and client settings.
type Spotify struct {
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	RedirectURI    string   `toml:"redirect_uri"`
	Scopes         []string `toml:"scopes"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	TokenCache     string   `toml:"token_cache"`
}

// Radar contains release discovery and playlist settings.
type Radar struct {
	Days          int  `toml:"days"`
	Public        bool `toml:"public"`
	ArtistDelayMS int  `toml:"artist_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values.
type Config struct {
	Spotify Spotify `toml:"spotify"`
	Radar   Radar   `toml:"radar"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration. Playlists are private unless
// explicitly requested otherwise.
func Default() Config {
	return Config{
		Spotify: Spotify{
			RedirectURI: DefaultRedirectURI,
			Scopes: []string{
				"user-follow-read",
				"playlist-modify-public",
				"playlist-modify-private",
			},
			TimeoutSeconds: 20,
		},
		Radar: Radar{
			Days:          7,
			Public:        false,
			ArtistDelayMS: 100,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Spotify.TimeoutSeconds) * time.Second
}

// ArtistDelay returns the pause between artists.
func (c *Config) ArtistDelay() time.Duration {
	return time.Duration(c.Radar.ArtistDelayMS) * time.Millisecond
}

// Overrides holds values supplied on the command line. Nil fields were not set.
type Overrides struct {
	ClientID       *string
	ClientSecret   *string
	RedirectURI    *string
	Days           *int
	Public         *bool
	TimeoutSeconds *int
	LogLevel       *string
	LogFormat      *string
}

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// ConfigPath is the TOML file to read. When empty the default location is
	// used and a missing file is not an error.
	ConfigPath string
	// EnvFile is a .env file with credentials. When empty ./.env is read if
	// present.
	EnvFile   string
	Overrides Overrides
	// SkipValidation returns the resolved config even when it is incomplete.
	SkipValidation bool
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// DefaultTokenCachePath returns the default OAuth token cache location.
func DefaultTokenCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, tokenFileName), nil
}

// Load resolves configuration with precedence
// flags > environment > .env file > config file > defaults, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if err := cfg.readFile(opts.ConfigPath); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		for _, key := range keys {
			if v, ok := dotenv[key]; ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	cfg.applyOverrides(opts.Overrides)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if opts.SkipValidation {
		return &cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}

	file, err := os.Open(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", expanded, err)
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultEnvFile
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	values, err := godotenv.Read(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

func (c *Config) applyEnv(env func(keys ...string) (string, bool)) error {
	if v, ok := env("SPOTIFY_CLIENT_ID", "SPOTIFY_ID"); ok {
		c.Spotify.ClientID = v
	}
	if v, ok := env("SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET"); ok {
		c.Spotify.ClientSecret = v
	}
	if v, ok := env("SPOTIFY_REDIRECT_URI"); ok {
		c.Spotify.RedirectURI = v
	}
	if v, ok := env("RELEASE_RADAR_DAYS"); ok {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RELEASE_RADAR_DAYS=%q is not an integer", ErrInvalid, v)
		}
		c.Radar.Days = days
	}
	if v, ok := env("RELEASE_RADAR_PUBLIC"); ok {
		public, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: RELEASE_RADAR_PUBLIC=%q is not a boolean", ErrInvalid, v)
		}
		c.Radar.Public = public
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.ClientID != nil {
		c.Spotify.ClientID = strings.TrimSpace(*o.ClientID)
	}
	if o.ClientSecret != nil {
		c.Spotify.ClientSecret = strings.TrimSpace(*o.ClientSecret)
	}
	if o.RedirectURI != nil {
		c.Spotify.RedirectURI = strings.TrimSpace(*o.RedirectURI)
	}
	if o.Days != nil {
		c.Radar.Days = *o.Days
	}
	if o.Public != nil {
		c.Radar.Public = *o.Public
	}
	if o.TimeoutSeconds != nil {
		c.Spotify.TimeoutSeconds = *o.TimeoutSeconds
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		c.Logging.Format = *o.LogFormat
	}
}

func (c *Config) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	if strings.TrimSpace(c.Spotify.TokenCache) == "" {
		path, err := DefaultTokenCachePath()
		if err != nil {
			return err
		}
		c.Spotify.TokenCache = path
		return nil
	}

	path, err := ExpandPath(c.Spotify.TokenCache)
	if err != nil {
		return err
	}
	c.Spotify.TokenCache = path
	return nil
}

// Validate checks that the configuration can be used for a run.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}

	u, err := url.Parse(c.Spotify.RedirectURI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: redirect URI %q must be an absolute http(s) URL", ErrInvalid, c.Spotify.RedirectURI)
	}
	if len(c.Spotify.Scopes) == 0 {
		return fmt.Errorf("%w: at least one Spotify scope is required", ErrInvalid)
	}
	if c.Spotify.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalid, c.Spotify.TimeoutSeconds)
	}
	if c.Radar.Days < 1 {
		return fmt.Errorf("%w: days must be at least 1, got %d", ErrInvalid, c.Radar.Days)
	}
	if c.Radar.ArtistDelayMS < 0 {
		return fmt.Errorf("%w: artist delay cannot be negative, got %d", ErrInvalid, c.Radar.ArtistDelayMS)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for display.
func (c Config) Redacted() Config {
	out := c
	out.Spotify.Scopes = append([]string(nil), c.Spotify.Scopes...)
	if out.Spotify.ClientSecret != "" {
		out.Spotify.ClientSecret = "********"
	}
	return out
}

// Encode renders the configuration as TOML.
func (c Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// ExpandPath resolves a leading "~" and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
