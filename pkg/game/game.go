package game

import (
	"fmt"
	"sort"
	"strings"
)

const (
	SourceGitHub = "github"
	SourceGitLab = "gitlab"
)

// Game is a title the launcher can manage. Games are values and never change once loaded.
type Game struct {
	// ID - stable identifier, also the name of the game's install directory
	ID string `yaml:"id" toml:"id"`

	// Name - display name
	Name string `yaml:"name" toml:"name"`

	// Source - the kind of host the builds are published on, github or gitlab
	Source string `yaml:"source" toml:"source"`

	// Owner and Repo - the repository the builds are published in
	Owner string `yaml:"owner" toml:"owner"`
	Repo  string `yaml:"repo" toml:"repo"`

	// BaseURL - API endpoint of a self-hosted source, empty for the public host
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// Executables - path of the executable inside an installed build, keyed by operating system
	Executables map[string]string `yaml:"executables" toml:"executables"`
}

func (g *Game) GetSource() string {
	if g.Source == "" {
		return SourceGitHub
	}
	return g.Source
}

func (g *Game) GetRepository() string {
	return fmt.Sprintf("%s/%s", g.Owner, g.Repo)
}

// Executable returns the relative path of the game executable on the given operating system
func (g *Game) Executable(os string) string {
	if exe, ok := g.Executables[os]; ok {
		return exe
	}

	if exe, ok := g.Executables["default"]; ok {
		return exe
	}

	if os == "windows" {
		return g.ID + ".exe"
	}

	return g.ID
}

func (g *Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.ContainsAny(g.ID, `/\:@ `) || g.ID == "." || g.ID == ".." {
		return fmt.Errorf("game id %q contains invalid characters", g.ID)
	}
	if g.Owner == "" || g.Repo == "" {
		return fmt.Errorf("game %s: owner and repo are required", g.ID)
	}

	switch g.GetSource() {
	case SourceGitHub, SourceGitLab:
	default:
		return fmt.Errorf("game %s: unknown source %q", g.ID, g.Source)
	}

	return nil
}

// Known are the games shipped with the launcher
var Known = []*Game{
	{
		ID:     "openrct2",
		Name:   "OpenRCT2",
		Source: SourceGitHub,
		Owner:  "OpenRCT2",
		Repo:   "OpenRCT2",
		Executables: map[string]string{
			"windows": "openrct2.exe",
			"linux":   "openrct2",
			"darwin":  "OpenRCT2.app/Contents/MacOS/OpenRCT2",
		},
	},
	{
		ID:     "openloco",
		Name:   "OpenLoco",
		Source: SourceGitHub,
		Owner:  "OpenLoco",
		Repo:   "OpenLoco",
		Executables: map[string]string{
			"windows": "openloco.exe",
			"linux":   "openloco",
			"darwin":  "OpenLoco.app/Contents/MacOS/OpenLoco",
		},
	},
}

// Registry is the catalog of games the launcher knows about
type Registry struct {
	games   map[string]*Game
	aliases map[string]string
}

func NewRegistry(games ...*Game) (*Registry, error) {
	r := &Registry{
		games:   make(map[string]*Game),
		aliases: make(map[string]string),
	}

	for _, g := range games {
		if err := r.Add(g); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Add registers a game, replacing a known game with the same id
func (r *Registry) Add(g *Game) error {
	if err := g.Validate(); err != nil {
		return err
	}

	r.games[strings.ToLower(g.ID)] = g

	return nil
}

// Alias maps a short name onto a game id
func (r *Registry) Alias(short, id string) {
	r.aliases[strings.ToLower(short)] = strings.ToLower(id)
}

// Get resolves a game by id or alias, case-insensitively
func (r *Registry) Get(name string) (*Game, error) {
	key := strings.ToLower(name)

	if g, ok := r.games[key]; ok {
		return g, nil
	}

	if id, ok := r.aliases[key]; ok {
		if g, ok := r.games[id]; ok {
			return g, nil
		}
	}

	return nil, fmt.Errorf("unknown game: %s", name)
}

// List returns every game sorted by id
func (r *Registry) List() []*Game {
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].ID < games[j].ID
	})

	return games
}
