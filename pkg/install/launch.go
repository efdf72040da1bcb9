package install

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// Launch starts the game executable with its own directory as working directory. The process is
// not tied to the launcher and is reaped in the background.
func (m *Manager) Launch() error {
	if !m.CanLaunch() {
		return fmt.Errorf("%w: %s", ErrUnavailable, m.game.ID)
	}

	exe := m.ExecutablePath()

	cmd := exec.Command(exe)
	cmd.Dir = filepath.Dir(exe)

	if err := cmd.Start(); err != nil {
		return &LaunchError{Path: exe, Err: err}
	}

	m.log.Debugf("launched %s (pid %d)", exe, cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			m.log.WithError(err).Debug("game exited")
		}
	}()

	return nil
}
