package install

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a download is already in progress for the game
	ErrBusy = errors.New("a download is already in progress")

	// ErrUnavailable is returned when launching a game that has no launchable executable
	ErrUnavailable = errors.New("game is not installed")
)

type DownloadErrorKind string

const (
	KindNetwork   DownloadErrorKind = "network"
	KindDisk      DownloadErrorKind = "disk"
	KindCancelled DownloadErrorKind = "cancelled"
	KindCorrupt   DownloadErrorKind = "corrupt"
)

// DownloadError is returned when a version could not be downloaded or installed. The committed
// install is left as it was.
type DownloadError struct {
	Game    string
	Version string
	Kind    DownloadErrorKind
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("unable to install %s %s (%s): %v", e.Game, e.Version, e.Kind, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a DownloadError of the given kind
func IsKind(err error, kind DownloadErrorKind) bool {
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// LaunchError is returned when the executable exists but the process could not be started
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("unable to launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (m *Manager) downloadError(ctx context.Context, version string, kind DownloadErrorKind, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		kind = KindCancelled
		if !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", context.Canceled, err)
		}
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindNetwork
	}

	return &DownloadError{
		Game:    m.game.ID,
		Version: version,
		Kind:    kind,
		Err:     err,
	}
}
