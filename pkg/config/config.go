package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pelletier/go-toml/v2"

	"github.com/intelorca/openlauncher/pkg/catalog"
	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/game"
)

type Config struct {
	// Path - path to store the configuration files, this path is set by default based on the operating system type
	// and your user's home directory. Typically, this is set to $HOME/.openlauncher
	Path string `yaml:"path" toml:"path"`

	// InstallPath - every game is installed into its own directory under this path, defaults to $HOME/.openlauncher/games
	InstallPath string `yaml:"install_path" toml:"install_path"`

	// CachePath - path to store cache files, this path is set by default based on the operating system type
	CachePath string `yaml:"cache_path" toml:"cache_path"`

	// IncludePrerelease - list prerelease builds by default
	IncludePrerelease bool `yaml:"include_prerelease" toml:"include_prerelease"`

	// Allow32Bit - accept 32-bit builds on a 64-bit machine when no native build is published
	Allow32Bit bool `yaml:"allow_32bit" toml:"allow_32bit"`

	// FetchTimeout - how long a single fetch of a game's builds may take, e.g. 30s
	FetchTimeout string `yaml:"fetch_timeout" toml:"fetch_timeout"`

	// GitHubToken and GitLabToken - API tokens, raising the rate limits of the release sources
	GitHubToken string `yaml:"github_token" toml:"github_token"`
	GitLabToken string `yaml:"gitlab_token" toml:"gitlab_token"`

	// Games - additional games, or overrides of the games known to the launcher
	Games []*game.Game `yaml:"games" toml:"games"`

	// Aliases - Allow for creating shorthand aliases for games you launch frequently. A good example
	// of this is `rct` -> `openrct2`, or `stable` -> `openrct2@v0.4.5`
	Aliases *Aliases `yaml:"aliases" toml:"aliases"`
}

func (c *Config) GetCachePath() string {
	return filepath.Join(c.CachePath, common.NAME)
}

func (c *Config) GetMetadataPath() string {
	return filepath.Join(c.CachePath, common.NAME, "metadata")
}

func (c *Config) GetFetchTimeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return catalog.DefaultFetchTimeout, nil
	}

	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout: %w", err)
	}

	if d < 0 {
		return 0, fmt.Errorf("invalid fetch_timeout: %s is negative", c.FetchTimeout)
	}

	return d, nil
}

func (c *Config) GetAlias(name string) *Alias {
	if c.Aliases == nil {
		return nil
	}

	for short, alias := range *c.Aliases {
		if strings.EqualFold(short, name) {
			return alias
		}
	}

	return nil
}

// GameRegistry returns the known games merged with the ones configured, plus the aliases
func (c *Config) GameRegistry() (*game.Registry, error) {
	r, err := game.NewRegistry(game.Known...)
	if err != nil {
		return nil, err
	}

	for _, g := range c.Games {
		if err := r.Add(g); err != nil {
			return nil, err
		}
	}

	if c.Aliases != nil {
		for short, alias := range *c.Aliases {
			r.Alias(short, alias.Name)
		}
	}

	return r, nil
}

func (c *Config) MkdirAll() error {
	paths := []string{c.InstallPath, c.GetCachePath(), c.GetMetadataPath()}

	for _, path := range paths {
		err := os.MkdirAll(path, 0755)
		if err != nil {
			return err
		}
	}

	return nil
}

// Load - load the configuration file
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Unmarshal(data, c)
	} else if strings.HasSuffix(path, ".toml") {
		return toml.Unmarshal(data, c)
	}

	return fmt.Errorf("unknown configuration file suffix")
}

// New - create a new configuration object
func New(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cfg.Load(path); err != nil {
			return cfg, err
		}
	}

	if cfg.Path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, err
		}
		cfg.Path = filepath.Join(homeDir, fmt.Sprintf(".%s", common.NAME))
	}

	if cfg.CachePath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return cfg, err
		}
		cfg.CachePath = cacheDir
	}

	if cfg.InstallPath == "" {
		cfg.InstallPath = filepath.Join(cfg.Path, "games")
	}

	if _, err := cfg.GetFetchTimeout(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
