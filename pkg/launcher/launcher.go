package launcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/asset"
	"github.com/intelorca/openlauncher/pkg/catalog"
	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/config"
	"github.com/intelorca/openlauncher/pkg/game"
	"github.com/intelorca/openlauncher/pkg/install"
	"github.com/intelorca/openlauncher/pkg/osconfig"
	"github.com/intelorca/openlauncher/pkg/score"
	"github.com/intelorca/openlauncher/pkg/source"
)

var (
	// ErrNoApplicableAsset is returned when a build publishes nothing that runs on this platform
	ErrNoApplicableAsset = errors.New("no applicable asset")

	ErrBuildNotFound = errors.New("build not found")
)

// Launcher ties the build catalog, the asset ranker and the install managers together
type Launcher struct {
	platform *osconfig.OS
	catalog  *catalog.Catalog
	installs *install.Registry
	games    *game.Registry
}

type Option func(*settings)

type settings struct {
	platform *osconfig.OS
	source   catalog.Source
	client   *http.Client
	hook     func(*game.Game, install.Status)
}

// WithPlatform overrides the platform detected from the running binary
func WithPlatform(p *osconfig.OS) Option {
	return func(s *settings) {
		s.platform = p
	}
}

// WithSource overrides the remote sources builds are listed from
func WithSource(src catalog.Source) Option {
	return func(s *settings) {
		s.source = src
	}
}

// WithHTTPClient sets the client used for downloads and, without WithSource, the API requests
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.client = c
	}
}

// WithStatusHook observes every install status transition
func WithStatusHook(hook func(*game.Game, install.Status)) Option {
	return func(s *settings) {
		s.hook = hook
	}
}

func New(cfg *config.Config, opts ...Option) (*Launcher, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	if s.platform == nil {
		s.platform = osconfig.New(runtime.GOOS, runtime.GOARCH, osconfig.WithCompat32(cfg.Allow32Bit))
	}

	if s.source == nil {
		s.source = source.New(&source.Options{
			MetadataDir: cfg.GetMetadataPath(),
			GitHubToken: cfg.GitHubToken,
			GitLabToken: cfg.GitLabToken,
			HTTPClient:  s.client,
		})
	}

	timeout, err := cfg.GetFetchTimeout()
	if err != nil {
		return nil, err
	}

	games, err := cfg.GameRegistry()
	if err != nil {
		return nil, err
	}

	return &Launcher{
		platform: s.platform,
		catalog:  catalog.New(s.source, catalog.WithFetchTimeout(timeout)),
		installs: install.NewRegistry(&install.Options{
			InstallPath: cfg.InstallPath,
			OS:          s.platform.Name,
			HTTPClient:  s.client,
			StatusHook:  s.hook,
		}),
		games: games,
	}, nil
}

func (l *Launcher) Platform() *osconfig.OS {
	return l.platform
}

// Game resolves a game by id or alias
func (l *Launcher) Game(name string) (*game.Game, error) {
	return l.games.Get(name)
}

func (l *Launcher) Games() []*game.Game {
	return l.games.List()
}

func (l *Launcher) Manager(g *game.Game) *install.Manager {
	return l.installs.Get(g)
}

// Refresh drops the cached builds of a game so the next listing goes to the source
func (l *Launcher) Refresh(g *game.Game) {
	l.catalog.Invalidate(g.ID)
}

// AvailableBuilds lists the builds of a game that publish at least one asset applicable to this
// platform, in the order the source returned them
func (l *Launcher) AvailableBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*catalog.Build, error) {
	builds, err := l.catalog.GetBuilds(ctx, g, includePrerelease)
	if err != nil {
		return nil, err
	}

	available := make([]*catalog.Build, 0, len(builds))
	for _, b := range builds {
		if _, ok := l.SelectAsset(b); !ok {
			logrus.WithField("game", g.ID).Tracef("skipping build %s: no applicable asset", b.Version)
			continue
		}
		available = append(available, b)
	}

	return available, nil
}

// SelectAsset returns the most preferred asset of a build for this platform
func (l *Launcher) SelectAsset(b *catalog.Build) (*asset.Asset, bool) {
	return score.Best(b.Assets, l.platform)
}

// FindBuild picks the first build for "latest" or an empty version, otherwise the build with the
// given version. A leading "v" is optional.
func FindBuild(builds []*catalog.Build, version string) (*catalog.Build, error) {
	if version == "" || version == common.Latest {
		if len(builds) == 0 {
			return nil, fmt.Errorf("%w: no builds published", ErrBuildNotFound)
		}
		return builds[0], nil
	}

	want := strings.TrimPrefix(version, "v")
	for _, b := range builds {
		if b.Version == version || strings.TrimPrefix(b.Version, "v") == want {
			return b, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrBuildNotFound, version)
}

// Install downloads the preferred asset of a build and activates it, verifying it against the
// checksum file published with the build when there is one
func (l *Launcher) Install(ctx context.Context, g *game.Game, b *catalog.Build, progress chan<- install.Progress) error {
	a, ok := l.SelectAsset(b)
	if !ok {
		return fmt.Errorf("%w: %s %s for %s/%s", ErrNoApplicableAsset, g.ID, b.Version, l.platform.Name, l.platform.Arch)
	}

	opts := []install.DownloadOption{install.WithAssetName(a.Name)}
	if sum, ok := b.Checksum(a); ok {
		opts = append(opts, install.WithChecksumURI(sum.URI))
	}

	logrus.WithField("game", g.ID).Debugf("installing %s from %s", b.Version, a.URI)

	return l.installs.Get(g).DownloadVersion(ctx, b.Version, a.URI, progress, opts...)
}
