package config

import (
	"strings"

	"github.com/intelorca/openlauncher/pkg/common"
)

type Aliases map[string]*Alias

// Alias points a short name at a game, optionally pinned to a version
type Alias struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
}

func (a *Alias) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var value string
	if unmarshal(&value) == nil {
		a.parse(value)
		return nil
	}

	type alias Alias
	aux := (*alias)(a)
	if err := unmarshal(aux); err != nil {
		return err
	}

	if a.Version == "" {
		a.Version = common.Latest
	}

	return nil
}

func (a *Alias) UnmarshalText(b []byte) error {
	a.parse(string(b))
	return nil
}

func (a *Alias) parse(value string) {
	p := strings.SplitN(value, "@", 2)
	a.Name = p[0]
	a.Version = common.Latest
	if len(p) > 1 && p[1] != "" {
		a.Version = p[1]
	}
}
