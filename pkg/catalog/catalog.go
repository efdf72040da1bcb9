package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/intelorca/openlauncher/pkg/game"
)

const DefaultFetchTimeout = 30 * time.Second

// Source fetches the builds a game has published. Builds are returned in the order the source
// lists them. When includePrerelease is false a source may still return non-release builds, the
// catalog filters them out.
type Source interface {
	ListBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*Build, error)
}

type Option func(*Catalog)

// WithFetchTimeout bounds every fetch from the source, zero disables the bound
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		c.timeout = d
	}
}

type entry struct {
	builds     []*Build
	prerelease bool
	fetchedAt  time.Time
}

// Catalog caches the builds of every game for the lifetime of the process. A cached list fetched
// with prereleases serves both scopes, a release-only list serves only the release-only scope.
type Catalog struct {
	source  Source
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]entry
	group singleflight.Group
}

func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source:  source,
		timeout: DefaultFetchTimeout,
		cache:   make(map[string]entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetBuilds returns the builds of a game, fetching them from the source when the cache cannot
// answer for the requested scope. Concurrent calls for the same game and scope share one fetch.
// A failed fetch leaves the cache as it was and returns a *FetchError.
func (c *Catalog) GetBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*Build, error) {
	if builds, ok := c.lookup(g.ID, includePrerelease); ok {
		logrus.WithField("game", g.ID).Trace("builds served from cache")
		return builds, nil
	}

	key := fmt.Sprintf("%s:%t", g.ID, includePrerelease)

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// another caller may have filled the cache while we waited to become the leader
		if builds, ok := c.lookup(g.ID, includePrerelease); ok {
			return builds, nil
		}

		return c.fetch(ctx, g, includePrerelease)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("game", g.ID).WithField("shared", shared).Trace("builds fetched")

	return scope(v.([]*Build), includePrerelease), nil
}

// Invalidate drops the cached builds of a game
func (c *Catalog) Invalidate(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, gameID)
}

// FetchedAt returns when the cached builds of a game were fetched
func (c *Catalog) FetchedAt(gameID string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.cache[gameID]
	return e.fetchedAt, ok
}

func (c *Catalog) lookup(gameID string, includePrerelease bool) ([]*Build, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.cache[gameID]
	if !ok {
		return nil, false
	}

	if includePrerelease && !e.prerelease {
		return nil, false
	}

	return scope(e.builds, includePrerelease), true
}

func (c *Catalog) fetch(ctx context.Context, g *game.Game, includePrerelease bool) ([]*Build, error) {
	log := logrus.WithField("game", g.ID).WithField("prerelease", includePrerelease)
	log.Debug("fetching builds")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	builds, err := c.source.ListBuilds(ctx, g, includePrerelease)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		fe := classify(g.ID, err)
		log.WithError(fe).Debug("unable to fetch builds")
		return nil, fe
	}

	builds = slices.DeleteFunc(slices.Clone(builds), func(b *Build) bool {
		return b == nil
	})

	c.mu.Lock()
	c.cache[g.ID] = entry{
		builds:     builds,
		prerelease: includePrerelease,
		fetchedAt:  time.Now(),
	}
	c.mu.Unlock()

	log.Debugf("fetched %d builds", len(builds))

	return builds, nil
}

func scope(builds []*Build, includePrerelease bool) []*Build {
	if includePrerelease {
		return slices.Clone(builds)
	}
	return Releases(builds)
}
