package catalog

import (
	"strings"
	"time"

	"github.com/intelorca/openlauncher/pkg/asset"
)

// Build is one published version of a game
type Build struct {
	Version     string
	PublishedAt *time.Time
	IsRelease   bool
	Assets      []*asset.Asset
}

// Releases returns only the builds marked as releases, keeping their order
func Releases(builds []*Build) []*Build {
	releases := make([]*Build, 0, len(builds))
	for _, b := range builds {
		if b.IsRelease {
			releases = append(releases, b)
		}
	}
	return releases
}

var sidecarSuffixes = []string{".sha256", ".sha512", ".sha1", ".md5"}

// Checksum returns the checksum file covering a, preferring the sidecar published for it
// ("<name>.sha256") over an aggregate file listing several assets. Sidecars published for other
// assets are never returned.
func (b *Build) Checksum(a *asset.Asset) (*asset.Asset, bool) {
	var aggregate *asset.Asset

	for _, c := range b.Assets {
		if c.GetType() != asset.Checksum {
			continue
		}

		owner, sidecar := sidecarOf(c.Name)
		if !sidecar {
			if aggregate == nil {
				aggregate = c
			}
			continue
		}

		if strings.EqualFold(owner, a.Name) {
			return c, true
		}
	}

	return aggregate, aggregate != nil
}

// sidecarOf returns the asset name a per-asset checksum file was published for
func sidecarOf(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)], true
		}
	}
	return "", false
}
