package score

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/asset"
	"github.com/intelorca/openlauncher/pkg/osconfig"
)

// Scored is an applicable asset together with the outcome of matching it against the platform
type Scored struct {
	Asset *asset.Asset
	Match osconfig.Match
}

// Rank drops every asset that is not applicable for the platform and orders the rest from most to
// least preferred. The order is total: exact architecture before a compatible one, self-contained
// formats before ones that need extraction, more platform tags before fewer, then URI and finally
// name ascending. The input slice is not modified.
func Rank(assets []*asset.Asset, p *osconfig.OS) []*asset.Asset {
	var scored []Scored

	for _, a := range assets {
		if a == nil {
			continue
		}

		m := a.Match(p)
		if !m.Applicable {
			logrus.Tracef("skipping asset %s: not applicable for %s/%s", a.Name, p.Name, p.Arch)
			continue
		}

		scored = append(scored, Scored{Asset: a, Match: m})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return less(scored[i], scored[j])
	})

	ranked := make([]*asset.Asset, 0, len(scored))
	for _, s := range scored {
		logrus.Tracef("ranked: %s (exact: %t, self-contained: %t, specificity: %d)",
			s.Asset.Name, s.Match.ExactArch, s.Asset.Format.SelfContained(), s.Asset.Specificity())
		ranked = append(ranked, s.Asset)
	}

	return ranked
}

// Best returns the most preferred applicable asset, false when there is none
func Best(assets []*asset.Asset, p *osconfig.OS) (*asset.Asset, bool) {
	ranked := Rank(assets, p)
	if len(ranked) == 0 {
		return nil, false
	}

	return ranked[0], true
}

func less(a, b Scored) bool {
	if a.Match.ExactArch != b.Match.ExactArch {
		return a.Match.ExactArch
	}

	if sa, sb := a.Asset.Format.SelfContained(), b.Asset.Format.SelfContained(); sa != sb {
		return sa
	}

	if a.Asset.Specificity() != b.Asset.Specificity() {
		return a.Asset.Specificity() > b.Asset.Specificity()
	}

	if a.Asset.URI != b.Asset.URI {
		return a.Asset.URI < b.Asset.URI
	}

	return a.Asset.Name < b.Asset.Name
}
