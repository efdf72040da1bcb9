package install

import (
	"sync"

	"github.com/intelorca/openlauncher/pkg/game"
)

// Registry owns one Manager per game, created the first time the game is looked up
type Registry struct {
	opts *Options

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(opts *Options) *Registry {
	return &Registry{
		opts:     opts,
		managers: make(map[string]*Manager),
	}
}

func (r *Registry) Get(g *game.Game) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[g.ID]; ok {
		return m
	}

	m := NewManager(g, r.opts)
	r.managers[g.ID] = m

	return m
}
