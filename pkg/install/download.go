package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/opencontainers/go-digest"

	"github.com/intelorca/openlauncher/pkg/checksum"
	"github.com/intelorca/openlauncher/pkg/common"
)

// chunkSize bounds how much is read between cancellation checks
const chunkSize = 32 * 1024

// maxChecksumSize bounds the size of a checksum file
const maxChecksumSize = 1 << 20

// Progress reports how much of an artifact has been downloaded. Total is -1 when the server did
// not announce a length.
type Progress struct {
	Game       string
	Version    string
	Downloaded int64
	Total      int64
}

// Fraction returns the downloaded fraction in [0, 1], or -1 when the total is unknown
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Downloaded) / float64(p.Total)
}

func (m *Manager) get(ctx context.Context, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", common.AppVersion.UserAgent())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status downloading %s: %s", uri, resp.Status)
	}

	return resp, nil
}

// download streams uri into dst, reporting progress and checking for cancellation between chunks.
// It returns the canonical digest of what was written.
func (m *Manager) download(ctx context.Context, version, uri, dst string, progress chan<- Progress) (digest.Digest, error) {
	m.log.Debugf("downloading %s", uri)

	resp, err := m.get(ctx, uri)
	if err != nil {
		return "", m.downloadError(ctx, version, KindNetwork, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return "", m.downloadError(ctx, version, KindDisk, err)
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	p := Progress{Game: m.game.ID, Version: version, Total: resp.ContentLength}
	report(progress, p)

	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", m.downloadError(ctx, version, KindCancelled, err)
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return "", m.downloadError(ctx, version, KindDisk, err)
			}
			_, _ = digester.Hash().Write(buf[:n])

			p.Downloaded += int64(n)
			report(progress, p)
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", m.downloadError(ctx, version, KindNetwork, rerr)
		}
	}

	if err := f.Close(); err != nil {
		return "", m.downloadError(ctx, version, KindDisk, err)
	}

	m.log.Debugf("downloaded %d bytes, %s", p.Downloaded, digester.Digest())

	return digester.Digest(), nil
}

// fetchChecksum downloads a checksum file and looks up the digest published for name
func (m *Manager) fetchChecksum(ctx context.Context, version, uri, name string) (digest.Digest, error) {
	m.log.Debugf("fetching checksum file %s", uri)

	resp, err := m.get(ctx, uri)
	if err != nil {
		return "", m.downloadError(ctx, version, KindNetwork, err)
	}
	defer resp.Body.Close()

	d, err := checksum.Parse(io.LimitReader(resp.Body, maxChecksumSize), name)
	if err != nil {
		return "", m.downloadError(ctx, version, KindCorrupt, err)
	}

	return d, nil
}

// report never blocks, a slow consumer misses intermediate updates
func report(progress chan<- Progress, p Progress) {
	if progress == nil {
		return
	}

	select {
	case progress <- p:
	default:
	}
}
