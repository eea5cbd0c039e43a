package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Error kinds. Errors returned by Client wrap exactly one of these alongside
// the underlying cause.
var (
	// ErrUnauthorized is returned when Spotify rejects the credentials or token.
	ErrUnauthorized = errors.New("spotify: unauthorized")

	// ErrTransient is returned for rate limiting, server errors and network failures.
	ErrTransient = errors.New("spotify: transient failure")

	// ErrRemote is returned for any other API error.
	ErrRemote = errors.New("spotify: request failed")

	// ErrMalformedResponse is returned when a response lacks required fields
	// or cannot be decoded.
	ErrMalformedResponse = errors.New("spotify: malformed response")
)

// wrapRemote annotates err with the operation and its error kind.
// Context cancellation is passed through without a kind.
func wrapRemote(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, Classify(err), err)
}

func malformed(what, detail string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, what, detail)
}

// Classify maps err to one of the error kinds above.
func Classify(err error) error {
	if status, ok := statusOf(err); ok {
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return ErrUnauthorized
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			return ErrTransient
		default:
			return ErrRemote
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return ErrUnauthorized
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrMalformedResponse
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return ErrTransient
	}

	return ErrRemote
}

func statusOf(err error) (int, bool) {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status, true
	}
	return 0, false
}
