package install

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, name string, data []byte) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0600))

	return p
}

func TestExtract_PathTraversal(t *testing.T) {
	cases := map[string][]byte{
		"tar":     tarBytes(t, entry{name: "../evil", content: "x"}),
		"zip":     zipBytes(t, entry{name: "../../evil", content: "x"}),
		"symlink": tarBytes(t, entry{name: "link", link: "../../etc/passwd"}),
		"abslink": tarBytes(t, entry{name: "link", link: "/etc/passwd"}),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			dst := filepath.Join(root, "build")

			err := newExtractor(context.Background(), writeArtifact(t, "a", data), dst, "game").Extract()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errCorrupt), "got %v", err)

			_, err = os.Stat(filepath.Join(root, "evil"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestExtract_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	data := tarBytes(t,
		entry{name: "game/bin/", dir: true},
		entry{name: "game/bin/real", content: script, mode: 0755},
		entry{name: "game/run", link: "bin/real"},
	)

	dst := filepath.Join(t.TempDir(), "build")
	require.NoError(t, newExtractor(context.Background(), writeArtifact(t, "a.tar", data), dst, "game").Extract())

	target, err := os.Readlink(filepath.Join(dst, "game", "run"))
	require.NoError(t, err)
	assert.Equal(t, "bin/real", target)
}

func TestExtract_SymlinkChains(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	cases := map[string][]byte{
		"write through linked parent": tarBytes(t,
			entry{name: "x/y/z/w/", dir: true},
			entry{name: "x/y/z/w/s", link: "../../../.."},
			entry{name: "x/y/z/w/s/up", link: "../../../.."},
			entry{name: "x/y/z/w/s/up/PWNED", content: "x"},
		),
		"link target through link": tarBytes(t,
			entry{name: "a/b/c/", dir: true},
			entry{name: "a/b/c/s1", link: "."},
			entry{name: "a/b/c/s2", link: "s1/s1/s1/../../../../.."},
		),
		"overwrite link": tarBytes(t,
			entry{name: "s", link: "game"},
			entry{name: "s", content: "x"},
		),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			dst := filepath.Join(root, "install", "game", "build")

			err := newExtractor(context.Background(), writeArtifact(t, "a.tar", data), dst, "game").Extract()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errCorrupt), "got %v", err)

			_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err == nil && d.Name() == "PWNED" {
					t.Errorf("file written outside the build directory: %s", p)
				}
				return nil
			})
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "build")

	err := newExtractor(context.Background(), writeArtifact(t, "a", nil), dst, "game").Extract()
	assert.True(t, errors.Is(err, errCorrupt), "got %v", err)

	err = newExtractor(context.Background(), writeArtifact(t, "b.tar", tarBytes(t, entry{name: "dir/", dir: true})), dst, "game").Extract()
	assert.True(t, errors.Is(err, errCorrupt), "got %v", err)
}

func TestExtract_Corrupt7z(t *testing.T) {
	data := append([]byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, []byte("definitely not a 7z archive")...)
	dst := filepath.Join(t.TempDir(), "build")

	err := newExtractor(context.Background(), writeArtifact(t, "a.7z", data), dst, "game").Extract()
	assert.True(t, errors.Is(err, errCorrupt), "got %v", err)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := filepath.Join(t.TempDir(), "build")
	err := newExtractor(ctx, writeArtifact(t, "a.tar", gameArchive(t)), dst, "game").Extract()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindExecutable(t *testing.T) {
	root := t.TempDir()

	write := func(rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0755))
	}

	write("OpenRCT2/data/readme.txt", "hello")
	write("OpenRCT2/bin/openrct2", script)
	write("OpenRCT2/openrct2", script)

	exe, err := findExecutable(root, "openrct2")
	require.NoError(t, err)
	assert.Equal(t, "OpenRCT2/openrct2", exe)

	exe, err = findExecutable(root, "OpenRCT2/bin/openrct2")
	require.NoError(t, err)
	assert.Equal(t, "OpenRCT2/bin/openrct2", exe)

	_, err = findExecutable(root, "missing")
	assert.True(t, errors.Is(err, errCorrupt))
}

func TestFindExecutable_Mimetype(t *testing.T) {
	root := t.TempDir()

	// the smallest header mimetype recognises as an ELF executable
	elf := append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, make([]byte, 8)...)
	elf = append(elf, 0x02, 0x00) // e_type ET_EXEC
	elf = append(elf, make([]byte, 64)...)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "dist"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "renamed-binary"), elf, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "notes.txt"), []byte("notes"), 0644))

	exe, err := findExecutable(root, "game")
	require.NoError(t, err)
	assert.Equal(t, "dist/renamed-binary", exe)
}
