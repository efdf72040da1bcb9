package catalog

import (
	"context"
	"errors"
	"fmt"
)

// FetchErrorKind categorizes why builds could not be fetched
type FetchErrorKind string

const (
	KindNetwork   FetchErrorKind = "network"
	KindTimeout   FetchErrorKind = "timeout"
	KindAuth      FetchErrorKind = "auth"
	KindRateLimit FetchErrorKind = "rate-limit"
	KindNotFound  FetchErrorKind = "not-found"
	KindMalformed FetchErrorKind = "malformed"
	KindCancelled FetchErrorKind = "cancelled"
)

// FetchError is returned when the builds of a game could not be fetched from its source
type FetchError struct {
	Game string
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch builds for %s (%s): %v", e.Game, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError of the given kind for a game
func NewFetchError(gameID string, kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Game: gameID, Kind: kind, Err: err}
}

// IsKind reports whether err is a FetchError of the given kind
func IsKind(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

func classify(gameID string, err error) *FetchError {
	if errors.Is(err, context.Canceled) {
		return NewFetchError(gameID, KindCancelled, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewFetchError(gameID, KindTimeout, err)
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return NewFetchError(gameID, fe.Kind, fe.Err)
	}

	return NewFetchError(gameID, KindNetwork, err)
}
