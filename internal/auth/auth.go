package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/justestif/spotify-release-radar/internal/config"
	"github.com/justestif/spotify-release-radar/internal/logging"
	spotifyapi "github.com/justestif/spotify-release-radar/internal/spotify"
)

const defaultCallbackTimeout = 2 * time.Minute

var (
	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")

	// ErrAccessDenied is returned when the user or Spotify rejects the authorization request.
	ErrAccessDenied = errors.New("spotify authorization denied")
)

// Authenticator handles Spotify OAuth2 authentication.
type Authenticator struct {
	auth            *spotifyauth.Authenticator
	cache           *TokenCache
	logger          *slog.Logger
	redirect        *url.URL
	timeout         time.Duration
	callbackTimeout time.Duration
}

// New creates an Authenticator from the resolved configuration.
// Returns config.ErrMissingCredentials if the client id or secret is empty.
func New(cfg *config.Config, logger *slog.Logger) (*Authenticator, error) {
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return nil, config.ErrMissingCredentials
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	redirect, err := url.Parse(cfg.Spotify.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: redirect URI %q", config.ErrInvalid, cfg.Spotify.RedirectURI)
	}
	if redirect.Path == "" {
		redirect.Path = "/"
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.Spotify.ClientID),
		spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.Spotify.RedirectURI),
		spotifyauth.WithScopes(cfg.Spotify.Scopes...),
	)

	return &Authenticator{
		auth:            auth,
		cache:           NewTokenCache(cfg.Spotify.TokenCache),
		logger:          logger,
		redirect:        redirect,
		timeout:         cfg.Timeout(),
		callbackTimeout: defaultCallbackTimeout,
	}, nil
}

// Authenticate returns an authenticated Spotify client.
// A cached token is reused when it still works; otherwise the browser flow runs.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}

	if token != nil {
		// The oauth2 transport refreshes an expired access token transparently.
		client := a.newClient(ctx, token)

		_, err := client.CurrentUser(ctx)
		if err == nil {
			newToken, tokenErr := client.Token()
			if tokenErr == nil && newToken.AccessToken != token.AccessToken {
				if err := a.cache.Save(newToken); err != nil {
					a.logger.Warn("Failed to cache refreshed token", "error", err)
				}
			}
			return client, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Only a rejected token warrants the browser flow.
		if kind := spotifyapi.Classify(err); kind != spotifyapi.ErrUnauthorized {
			return nil, fmt.Errorf("checking cached token: %w: %w", kind, err)
		}

		a.logger.Info("Cached token invalid, starting new authentication...", "error", err)
	}

	return a.runOAuthFlow(ctx)
}

// newClient builds a Spotify client whose requests honor the configured timeout.
func (a *Authenticator) newClient(ctx context.Context, token *oauth2.Token) *spotify.Client {
	httpClient := a.auth.Client(ctx, token)
	httpClient.Timeout = a.timeout
	return spotify.New(httpClient, spotify.WithRetry(true))
}

// runOAuthFlow performs the full OAuth authorization code flow.
func (a *Authenticator) runOAuthFlow(ctx context.Context) (*spotify.Client, error) {
	state := uuid.NewString()

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", a.redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listening for OAuth callback on %s: %w", a.redirect.Host, err)
	}

	server := &http.Server{
		Handler:           a.callbackRouter(state, tokenCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errCh, fmt.Errorf("callback server error: %w", err))
		}
	}()

	a.logger.Info("To authenticate, open this URL in your browser:")
	a.logger.Info(a.auth.AuthURL(state))
	a.logger.Info("Waiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err = <-errCh:
	case <-time.After(a.callbackTimeout):
		err = ErrAuthTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err != nil {
		return nil, err
	}

	if err := a.cache.Save(token); err != nil {
		a.logger.Warn("Failed to cache token", "path", a.cache.Path(), "error", err)
	}

	return a.newClient(ctx, token), nil
}

// callbackRouter serves the redirect URI path and reports the outcome on
// tokenCh or errCh.
func (a *Authenticator) callbackRouter(expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(a.redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, expectedState, tokenCh, errCh)
	})
	return router
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	query := r.URL.Query()

	if query.Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		sendErr(errCh, ErrStateMismatch)
		return
	}

	if errMsg := query.Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		sendErr(errCh, fmt.Errorf("%w: %s", ErrAccessDenied, errMsg))
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		sendErr(errCh, fmt.Errorf("exchanging code for token: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Release Radar</title></head>
<body>
<h1>Authentication Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	select {
	case tokenCh <- token:
	default:
	}
}

// sendErr reports err without blocking when an outcome was already delivered.
func sendErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
