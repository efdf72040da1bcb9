package source

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/go-github/v62/github"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/catalog"
	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/game"
)

type ISource interface {
	catalog.Source
	GetSource() string
}

type Options struct {
	// MetadataDir - where API responses are cached between runs, empty keeps them in memory
	MetadataDir string

	GitHubToken string
	GitLabToken string

	// HTTPClient - overrides the caching client, used by tests
	HTTPClient *http.Client
}

// Sources routes every game to the source its builds are published on
type Sources struct {
	sources map[string]ISource
}

func New(opts *Options) *Sources {
	client := opts.HTTPClient
	if client == nil {
		client = newCachingClient(opts.MetadataDir)
	}

	gh := github.NewClient(client)
	gh.UserAgent = common.AppVersion.UserAgent()
	if opts.GitHubToken != "" {
		gh = gh.WithAuthToken(opts.GitHubToken)
	}

	return NewSources(NewGitHub(gh), NewGitLab(client, opts.GitLabToken))
}

func NewSources(sources ...ISource) *Sources {
	s := &Sources{sources: make(map[string]ISource)}
	for _, src := range sources {
		s.sources[src.GetSource()] = src
	}
	return s
}

func (s *Sources) ListBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*catalog.Build, error) {
	src, ok := s.sources[g.GetSource()]
	if !ok {
		return nil, catalog.NewFetchError(g.ID, catalog.KindNotFound, fmt.Errorf("no source for %q", g.GetSource()))
	}

	logrus.WithField("game", g.ID).Debugf("listing builds from %s", src.GetSource())

	return src.ListBuilds(ctx, g, includePrerelease)
}

func newCachingClient(metadataDir string) *http.Client {
	if metadataDir == "" {
		return httpcache.NewMemoryCacheTransport().Client()
	}

	return httpcache.NewTransport(diskcache.New(filepath.Join(metadataDir, "http"))).Client()
}
