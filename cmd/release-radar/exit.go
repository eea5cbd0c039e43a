package main

import (
	"context"
	"errors"

	"github.com/justestif/spotify-release-radar/internal/auth"
	"github.com/justestif/spotify-release-radar/internal/config"
	"github.com/justestif/spotify-release-radar/internal/spotify"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitConfig      = 2
	exitAuth        = 3
	exitTransient   = 4
	exitInterrupted = 130
)

// errUsage marks bad command-line input.
var errUsage = errors.New("usage error")

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrMissingCredentials),
		errors.Is(err, config.ErrInvalid):
		return exitConfig
	case errors.Is(err, spotify.ErrUnauthorized),
		errors.Is(err, auth.ErrAuthTimeout),
		errors.Is(err, auth.ErrStateMismatch),
		errors.Is(err, auth.ErrAccessDenied):
		return exitAuth
	case errors.Is(err, spotify.ErrTransient):
		return exitTransient
	default:
		return exitFailure
	}
}
