package install

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/intelorca/openlauncher/pkg/game"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)
}

const script = "#!/bin/sh\nexit 0\n"

var testGame = &game.Game{ID: "testgame", Name: "Test Game", Owner: "owner", Repo: "repo"}

func exeName() string {
	return testGame.Executable(runtime.GOOS)
}

type entry struct {
	name    string
	content string
	mode    int64
	dir     bool
	link    string
}

func tarBytes(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		case e.link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.content))
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0644
		}

		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())

	return buf.Bytes()
}

func zipBytes(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		mode := os.FileMode(e.mode)
		if mode == 0 {
			mode = 0644
		}
		if e.dir {
			mode = os.ModeDir | 0755
		}
		hdr.SetMode(mode)

		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)

		if !e.dir {
			_, err = w.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write(data)
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	return buf.Bytes()
}

func bz2Bytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	require.NoError(t, err)
	_, err = bw.Write(data)
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	return buf.Bytes()
}

// gameArchive is a typical release layout, wrapped in a top-level directory
func gameArchive(t *testing.T) []byte {
	return tarBytes(t,
		entry{name: "game/", dir: true},
		entry{name: "game/" + exeName(), content: script, mode: 0755},
		entry{name: "game/data/g1.dat", content: "data"},
	)
}

type fileServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests map[string]int
}

func serve(t *testing.T, files map[string][]byte) *fileServer {
	t.Helper()

	s := &fileServer{files: files, requests: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		data, ok := s.files[r.URL.Path]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)

	return s
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) hook(_ *game.Game, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) get() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

func (r *statusRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = nil
}

func newTestManager(t *testing.T, client *http.Client) (*Manager, *statusRecorder) {
	t.Helper()

	rec := &statusRecorder{}
	m := NewManager(testGame, &Options{
		InstallPath: t.TempDir(),
		OS:          runtime.GOOS,
		HTTPClient:  client,
		StatusHook:  rec.hook,
	})

	return m, rec
}
