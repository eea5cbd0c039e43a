package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/justestif/spotify-release-radar/internal/auth"
	"github.com/justestif/spotify-release-radar/internal/config"
	"github.com/justestif/spotify-release-radar/internal/playlist"
	"github.com/justestif/spotify-release-radar/internal/radar"
	"github.com/justestif/spotify-release-radar/internal/release"
	"github.com/justestif/spotify-release-radar/internal/spotify"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeSpotify struct {
	public []bool
	adds   [][]string
}

func (f *fakeSpotify) FollowedArtists(context.Context) ([]release.Artist, error) {
	return []release.Artist{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, nil
}

func (f *fakeSpotify) ArtistAlbums(_ context.Context, artistID string) ([]release.Album, error) {
	if artistID == "a" {
		return []release.Album{{ID: "alb-a", Name: "Fresh", ReleaseDate: "2024-06-12", Precision: "day"}}, nil
	}
	return []release.Album{{ID: "alb-b", Name: "Stale", ReleaseDate: "2024-05-16", Precision: "day"}}, nil
}

func (f *fakeSpotify) AlbumTracks(_ context.Context, albumID string) ([]release.Track, error) {
	return []release.Track{
		{ID: albumID + "-1", Name: "One", URL: "https://open.spotify.com/track/" + albumID + "-1"},
		{ID: albumID + "-2", Name: "Two", URL: "https://open.spotify.com/track/" + albumID + "-2"},
	}, nil
}

func (f *fakeSpotify) CurrentUserID(context.Context) (string, error) { return "listener", nil }

func (f *fakeSpotify) CreatePlaylist(_ context.Context, _, name, _ string, public bool) (*playlist.Playlist, error) {
	f.public = append(f.public, public)
	return &playlist.Playlist{ID: "pl1", Name: name, URL: "https://open.spotify.com/playlist/pl1"}, nil
}

func (f *fakeSpotify) AddTracks(_ context.Context, _ string, ids []string) error {
	f.adds = append(f.adds, slices.Clone(ids))
	return nil
}

type cliResult struct {
	stdout    string
	stderr    string
	err       error
	connected bool
}

// runCLI executes the root command in an isolated home and working directory.
func runCLI(t *testing.T, api radar.Spotify, env map[string]string, args ...string) cliResult {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Chdir(dir)

	var res cliResult
	d := deps{
		connect: func(context.Context, *config.Config, *slog.Logger) (radar.Spotify, error) {
			res.connected = true
			return api, nil
		},
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		now: func() time.Time { return testNow },
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(d)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	res.err = cmd.ExecuteContext(context.Background())
	res.stdout = stdout.String()
	res.stderr = stderr.String()
	return res
}

var credentials = map[string]string{
	"SPOTIFY_CLIENT_ID":     "id",
	"SPOTIFY_CLIENT_SECRET": "secret",
}

func TestRunCreatesPrivatePlaylist(t *testing.T) {
	api := &fakeSpotify{}

	res := runCLI(t, api, credentials, "--days", "7")
	if res.err != nil {
		t.Fatalf("Execute() error = %v\nstderr: %s", res.err, res.stderr)
	}

	if len(api.public) != 1 || api.public[0] {
		t.Errorf("public = %v, want one private playlist", api.public)
	}
	if len(api.adds) != 1 || !slices.Equal(api.adds[0], []string{"alb-a-1", "alb-a-2"}) {
		t.Errorf("adds = %v, want one batch from the fresh album", api.adds)
	}
	for _, want := range []string{"✨ Success! ✨", "New Releases 2024-06-15", "Playlist URL: https://open.spotify.com/playlist/pl1"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	for _, want := range []string{"Checking artist 1/2: A", "New release(s) found for A!", "Checking artist 2/2: B", "No new releases found"} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("log output missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestRunPublicFlag(t *testing.T) {
	api := &fakeSpotify{}

	res := runCLI(t, api, credentials, "--public")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if len(api.public) != 1 || !api.public[0] {
		t.Errorf("public = %v, want [true]", api.public)
	}
}

func TestRunCredentialFlags(t *testing.T) {
	api := &fakeSpotify{}

	res := runCLI(t, api, nil, "--client-id", "flag-id", "--client-secret", "flag-secret")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "https://open.spotify.com/track/alb-a-1") {
		t.Errorf("stdout missing track row:\n%s", res.stdout)
	}
}

func TestRunMissingCredentials(t *testing.T) {
	res := runCLI(t, &fakeSpotify{}, nil)

	if !errors.Is(res.err, config.ErrMissingCredentials) {
		t.Fatalf("Execute() error = %v, want ErrMissingCredentials", res.err)
	}
	if res.connected {
		t.Error("connected to Spotify without credentials")
	}
	if got := exitCode(res.err); got != exitConfig {
		t.Errorf("exitCode() = %d, want %d", got, exitConfig)
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--weeks", "2"}},
		{"unexpected argument", []string{"extra"}},
		{"zero days", []string{"--days", "0"}},
		{"bad log format", []string{"--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, &fakeSpotify{}, credentials, tt.args...)
			if got := exitCode(res.err); got != exitConfig {
				t.Errorf("exitCode(%v) = %d, want %d", res.err, got, exitConfig)
			}
			if res.connected {
				t.Error("connected to Spotify despite invalid input")
			}
		})
	}
}

func TestConfigShowMasksSecret(t *testing.T) {
	res := runCLI(t, nil, credentials, "config", "--days", "3")
	// --days is a root-only flag
	if exitCode(res.err) != exitConfig {
		t.Fatalf("config --days error = %v, want usage error", res.err)
	}

	res = runCLI(t, nil, credentials, "config", "show", "--client-secret", "hunter2")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if strings.Contains(res.stdout, "hunter2") {
		t.Errorf("config output leaks secret:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "client_id = 'id'") && !strings.Contains(res.stdout, `client_id = "id"`) {
		t.Errorf("config output missing client id:\n%s", res.stdout)
	}
	if strings.Contains(res.stdout, "not ready to run") {
		t.Errorf("complete config reported as not ready:\n%s", res.stdout)
	}
}

func TestConfigShowWithoutCredentials(t *testing.T) {
	res := runCLI(t, nil, nil, "config")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "not ready to run") {
		t.Errorf("expected readiness warning:\n%s", res.stdout)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "radar", "config.toml")

	res := runCLI(t, nil, nil, "config", "init", "--path", target)
	if res.err != nil {
		t.Fatalf("config init error = %v", res.err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// The written file must load cleanly once credentials are supplied
	if _, err := config.Load(config.LoadOptions{
		ConfigPath: target,
		LookupEnv: func(key string) (string, bool) {
			v, ok := credentials[key]
			return v, ok
		},
	}); err != nil {
		t.Errorf("Load(written config) error = %v", err)
	}

	res = runCLI(t, nil, nil, "config", "init", "--path", target)
	if res.err == nil {
		t.Error("second init without --overwrite should fail")
	}

	res = runCLI(t, nil, nil, "config", "init", "--path", target, "--overwrite")
	if res.err != nil {
		t.Errorf("init --overwrite error = %v", res.err)
	}
}

func TestLogout(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(fmt.Sprintf("[spotify]\ntoken_cache = %q\n", tokenPath)), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, nil, nil, "logout", "--config", configPath)
	if res.err != nil {
		t.Fatalf("logout error = %v", res.err)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("logout did not remove the token file")
	}
	if !strings.Contains(res.stdout, tokenPath) {
		t.Errorf("stdout = %q, want token path", res.stdout)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), exitInterrupted},
		{"usage", fmt.Errorf("%w: bad flag", errUsage), exitConfig},
		{"missing credentials", config.ErrMissingCredentials, exitConfig},
		{"invalid config", fmt.Errorf("%w: days", config.ErrInvalid), exitConfig},
		{"unauthorized", fmt.Errorf("fetching: %w", spotify.ErrUnauthorized), exitAuth},
		{"auth timeout", auth.ErrAuthTimeout, exitAuth},
		{"state mismatch", auth.ErrStateMismatch, exitAuth},
		{"transient", fmt.Errorf("albums: %w", spotify.ErrTransient), exitTransient},
		{"malformed", spotify.ErrMalformedResponse, exitFailure},
		{"other", errors.New("boom"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
