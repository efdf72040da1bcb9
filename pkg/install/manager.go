package install

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/checksum"
	"github.com/intelorca/openlauncher/pkg/game"
)

const buildsDir = "builds"

type Options struct {
	// InstallPath - root under which every game gets its own directory
	InstallPath string

	// OS - operating system executables are resolved for
	OS string

	HTTPClient *http.Client

	// StatusHook - called on every status transition, must not block
	StatusHook func(g *game.Game, s Status)
}

// Manager owns the install directory of one game. All mutation goes through DownloadVersion,
// which stages a build in a temporary directory and activates it by renaming it into place and
// replacing the commit record.
type Manager struct {
	game   *game.Game
	dir    string
	os     string
	client *http.Client
	hook   func(g *game.Game, s Status)
	log    *logrus.Entry

	mu      sync.Mutex
	busy    bool
	status  Status
	lastErr error
}

func NewManager(g *game.Game, opts *Options) *Manager {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	m := &Manager{
		game:   g,
		dir:    filepath.Join(opts.InstallPath, g.ID),
		os:     opts.OS,
		client: client,
		hook:   opts.StatusHook,
		log:    logrus.WithField("game", g.ID),
	}

	m.status = m.settledStatus()

	return m
}

func (m *Manager) Game() *game.Game {
	return m.game
}

// Dir is the install directory of the game
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status
}

// LastError returns the error of the most recent failed download, nil after a success
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

// State returns the commit record, nil when nothing has been installed by the launcher
func (m *Manager) State() (*State, error) {
	return loadState(m.dir)
}

// CurrentVersion returns the installed version. It is unknown when nothing is installed, the
// commit record is unreadable, or its executable has gone missing.
func (m *Manager) CurrentVersion() (string, bool) {
	state, err := loadState(m.dir)
	if err != nil {
		m.log.WithError(err).Debug("unable to read install record")
		return "", false
	}

	if state == nil {
		return "", false
	}

	if _, err := os.Stat(m.resolve(state.Executable)); err != nil {
		return "", false
	}

	return state.Version, true
}

// ExecutablePath is where the game executable is expected. Without a commit record it points at
// a manually installed game directly inside the install directory.
func (m *Manager) ExecutablePath() string {
	state, err := loadState(m.dir)
	if err == nil && state != nil {
		return m.resolve(state.Executable)
	}

	return m.resolve(m.game.Executable(m.os))
}

// CanLaunch reports whether a launchable executable exists, whether or not its version is known
func (m *Manager) CanLaunch() bool {
	fi, err := os.Stat(m.ExecutablePath())
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}

	if m.os != "windows" && fi.Mode().Perm()&0111 == 0 {
		return false
	}

	return true
}

type downloadOptions struct {
	name        string
	digest      digest.Digest
	checksumURI string
}

type DownloadOption func(*downloadOptions)

// WithAssetName sets the file name of the artifact, used to detect its format and to find it in a
// checksum file. It defaults to the last element of the URI path.
func WithAssetName(name string) DownloadOption {
	return func(o *downloadOptions) {
		o.name = name
	}
}

// WithDigest verifies the artifact against a known digest
func WithDigest(d digest.Digest) DownloadOption {
	return func(o *downloadOptions) {
		o.digest = d
	}
}

// WithChecksumURI verifies the artifact against the entry for it in a published checksum file
func WithChecksumURI(uri string) DownloadOption {
	return func(o *downloadOptions) {
		o.checksumURI = uri
	}
}

// DownloadVersion downloads the artifact at uri and makes it the installed version. Only one
// download per game may be in flight, a second call fails with ErrBusy. Progress updates are sent
// without blocking. Cancelling ctx stops the download within one chunk and leaves the previous
// install untouched, as does any failure.
func (m *Manager) DownloadVersion(ctx context.Context, version, uri string, progress chan<- Progress, opts ...DownloadOption) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	o := &downloadOptions{name: assetName(uri)}
	for _, opt := range opts {
		opt(o)
	}

	err := m.install(ctx, version, uri, o, progress)

	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		m.log.WithError(err).Debug("install failed")
		if !IsKind(err, KindCancelled) {
			m.setStatus(StatusFailed)
		}
		m.setStatus(m.settledStatus())
		return err
	}

	m.setStatus(StatusInstalled)

	return nil
}

func (m *Manager) install(ctx context.Context, version, uri string, o *downloadOptions, progress chan<- Progress) error {
	m.setStatus(StatusDownloading)

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return m.downloadError(ctx, version, KindDisk, err)
	}

	staging := filepath.Join(m.dir, ".staging-"+uuid.NewString())
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			m.log.WithError(err).Warn("unable to remove staging directory")
		}
	}()

	if err := os.MkdirAll(staging, 0755); err != nil {
		return m.downloadError(ctx, version, KindDisk, err)
	}

	artifact := filepath.Join(staging, o.name)
	computed, err := m.download(ctx, version, uri, artifact, progress)
	if err != nil {
		return err
	}

	expected := o.digest
	if expected == "" && o.checksumURI != "" {
		expected, err = m.fetchChecksum(ctx, version, o.checksumURI, o.name)
		if err != nil {
			if !errors.Is(err, checksum.ErrNotFound) {
				return err
			}
			m.log.Warnf("%s is not listed in the checksum file, skipping verification", o.name)
			expected = ""
		}
	}

	if expected != "" {
		if err := m.verify(artifact, computed, expected); err != nil {
			return m.downloadError(ctx, version, KindCorrupt, err)
		}
		m.log.Debug("checksum verified")
	}

	m.setStatus(StatusInstalling)

	build := filepath.Join(staging, "build")
	exe, err := m.unpack(ctx, artifact, build)
	if err != nil {
		kind := KindCorrupt
		if isDiskError(err) && !errors.Is(err, errCorrupt) {
			kind = KindDisk
		}
		return m.downloadError(ctx, version, kind, err)
	}

	// last point at which cancellation is honoured, activation runs to completion
	if err := ctx.Err(); err != nil {
		return m.downloadError(ctx, version, KindCancelled, err)
	}

	state := &State{
		Version:     version,
		Asset:       o.name,
		URI:         uri,
		Digest:      computed,
		InstalledAt: time.Now().UTC(),
	}

	if err := m.activate(build, exe, state); err != nil {
		return m.downloadError(context.Background(), version, KindDisk, err)
	}

	m.log.Debugf("installed %s %s", m.game.ID, version)

	return nil
}

func (m *Manager) verify(artifact string, computed, expected digest.Digest) error {
	if expected.Algorithm() == computed.Algorithm() {
		if expected != computed {
			return fmt.Errorf("%w: expected %s, got %s", checksum.ErrMismatch, expected, computed)
		}
		return nil
	}

	return checksum.Verify(artifact, expected)
}

// unpack extracts the artifact into build and returns the executable path relative to build
func (m *Manager) unpack(ctx context.Context, artifact, build string) (string, error) {
	want := m.game.Executable(m.os)

	if err := newExtractor(ctx, artifact, build, want).Extract(); err != nil {
		return "", err
	}

	exe, err := findExecutable(build, want)
	if err != nil {
		return "", err
	}

	if m.os != "windows" {
		if err := os.Chmod(filepath.Join(build, filepath.FromSlash(exe)), 0755); err != nil {
			return "", err
		}
	}

	m.log.Debugf("found executable %s", exe)

	return exe, nil
}

// activate moves a staged build into place and commits it. The previous build is removed only
// once the new commit record is in place.
func (m *Manager) activate(build, exe string, state *State) error {
	previous, err := loadState(m.dir)
	if err != nil {
		m.log.WithError(err).Debug("ignoring unreadable install record")
		previous = nil
	}

	if err := os.MkdirAll(filepath.Join(m.dir, buildsDir), 0755); err != nil {
		return err
	}

	rel := path.Join(buildsDir, uuid.NewString())
	final := m.resolve(rel)

	if err := os.Rename(build, final); err != nil {
		return err
	}

	state.Build = rel
	state.Executable = path.Join(rel, exe)

	if err := saveState(m.dir, state); err != nil {
		_ = os.RemoveAll(final)
		return err
	}

	if previous != nil && previous.Build != rel {
		if err := os.RemoveAll(m.resolve(previous.Build)); err != nil {
			m.log.WithError(err).Warn("unable to remove previous build")
		}
	}

	return nil
}

func (m *Manager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy {
		return fmt.Errorf("%w: %s", ErrBusy, m.game.ID)
	}

	m.busy = true

	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.busy = false
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	changed := m.status != s
	m.status = s
	m.mu.Unlock()

	if changed {
		m.log.Tracef("status: %s", s)
		if m.hook != nil {
			m.hook(m.game, s)
		}
	}
}

// settledStatus is the status when no download is running
func (m *Manager) settledStatus() Status {
	if _, ok := m.CurrentVersion(); ok {
		return StatusInstalled
	}
	return StatusIdle
}

func (m *Manager) resolve(rel string) string {
	return filepath.Join(m.dir, filepath.FromSlash(rel))
}

func assetName(uri string) string {
	name := "artifact"
	if u, err := url.Parse(uri); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			name = base
		}
	}
	return name
}
