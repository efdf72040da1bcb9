package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
)

const stateFile = "install.json"

// State is the commit record of the active build. Paths are relative to the game directory
// and use forward slashes.
type State struct {
	Version     string        `json:"version"`
	Executable  string        `json:"executable"`
	Build       string        `json:"build"`
	Asset       string        `json:"asset,omitempty"`
	URI         string        `json:"uri,omitempty"`
	Digest      digest.Digest `json:"digest,omitempty"`
	InstalledAt time.Time     `json:"installed_at"`
}

func (s *State) validate(dir string) error {
	if s.Version == "" {
		return errors.New("missing version")
	}

	for _, p := range []string{s.Executable, s.Build} {
		if p == "" {
			return errors.New("missing path")
		}
		if err := ensureWithinRoot(dir, filepath.Join(dir, filepath.FromSlash(p))); err != nil {
			return err
		}
	}

	return nil
}

// loadState reads the commit record, a missing record is not an error
func loadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("invalid install record: %w", err)
	}

	if err := state.validate(dir); err != nil {
		return nil, fmt.Errorf("invalid install record: %w", err)
	}

	return state, nil
}

// saveState replaces the commit record atomically
func saveState(dir string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".install-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, stateFile))
}
