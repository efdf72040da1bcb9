package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(Known...)
	require.NoError(t, err)

	g, err := r.Get("OpenRCT2")
	assert.NoError(t, err)
	assert.Equal(t, "openrct2", g.ID)
	assert.Equal(t, "OpenRCT2/OpenRCT2", g.GetRepository())

	r.Alias("loco", "openloco")
	g, err = r.Get("LOCO")
	assert.NoError(t, err)
	assert.Equal(t, "openloco", g.ID)

	_, err = r.Get("openttd")
	assert.Error(t, err)

	var ids []string
	for _, g := range r.List() {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"openloco", "openrct2"}, ids)
}

func TestRegistry_Add(t *testing.T) {
	r, err := NewRegistry(Known...)
	require.NoError(t, err)

	err = r.Add(&Game{ID: "fork", Name: "Fork", Source: SourceGitLab, Owner: "someone", Repo: "fork"})
	assert.NoError(t, err)

	g, err := r.Get("fork")
	assert.NoError(t, err)
	assert.Equal(t, SourceGitLab, g.GetSource())
}

func TestGame_Validate(t *testing.T) {
	cases := []struct {
		name  string
		game  *Game
		valid bool
	}{
		{"valid", &Game{ID: "g", Owner: "o", Repo: "r"}, true},
		{"missing id", &Game{Owner: "o", Repo: "r"}, false},
		{"path in id", &Game{ID: "../g", Owner: "o", Repo: "r"}, false},
		{"dot dot", &Game{ID: "..", Owner: "o", Repo: "r"}, false},
		{"missing repo", &Game{ID: "g", Owner: "o"}, false},
		{"unknown source", &Game{ID: "g", Source: "svn", Owner: "o", Repo: "r"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.game.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGame_Executable(t *testing.T) {
	g := Known[0]
	assert.Equal(t, "openrct2.exe", g.Executable("windows"))
	assert.Equal(t, "openrct2", g.Executable("linux"))
	assert.Equal(t, "OpenRCT2.app/Contents/MacOS/OpenRCT2", g.Executable("darwin"))

	custom := &Game{ID: "custom"}
	assert.Equal(t, "custom.exe", custom.Executable("windows"))
	assert.Equal(t, "custom", custom.Executable("linux"))

	custom.Executables = map[string]string{"default": "bin/run"}
	assert.Equal(t, "bin/run", custom.Executable("linux"))
}
