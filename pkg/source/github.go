package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/asset"
	"github.com/intelorca/openlauncher/pkg/catalog"
	"github.com/intelorca/openlauncher/pkg/game"
)

// DefaultMaxPages bounds how many pages of releases are listed per fetch
const DefaultMaxPages = 3

// GitHub lists the releases of a repository through the GitHub REST API
type GitHub struct {
	client   *github.Client
	maxPages int
}

func NewGitHub(client *github.Client) *GitHub {
	return &GitHub{
		client:   client,
		maxPages: DefaultMaxPages,
	}
}

func (s *GitHub) GetSource() string {
	return game.SourceGitHub
}

// ListBuilds returns the releases of the game's repository newest first, as the API lists them.
// Drafts and prereleases are not releases and are left out unless includePrerelease is set.
func (s *GitHub) ListBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*catalog.Build, error) {
	client := s.client
	if g.BaseURL != "" {
		var err error
		client, err = s.client.WithEnterpriseURLs(g.BaseURL, g.BaseURL)
		if err != nil {
			return nil, catalog.NewFetchError(g.ID, catalog.KindMalformed, err)
		}
	}

	opts := &github.ListOptions{PerPage: 100}

	var builds []*catalog.Build
	for page := 0; page < s.maxPages; page++ {
		logrus.WithField("game", g.ID).Tracef("listing releases of %s, page %d", g.GetRepository(), opts.Page)

		releases, resp, err := client.Repositories.ListReleases(ctx, g.Owner, g.Repo, opts)
		if err != nil {
			return nil, classifyGitHubError(g.ID, err)
		}

		for _, r := range releases {
			b := releaseToBuild(r)
			if !includePrerelease && !b.IsRelease {
				continue
			}
			builds = append(builds, b)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return builds, nil
}

func releaseToBuild(r *github.RepositoryRelease) *catalog.Build {
	version := r.GetTagName()
	if version == "" {
		version = r.GetName()
	}

	b := &catalog.Build{
		Version:   version,
		IsRelease: !r.GetDraft() && !r.GetPrerelease(),
	}

	if r.PublishedAt != nil {
		b.PublishedAt = r.PublishedAt.GetTime()
	}

	for _, a := range r.Assets {
		b.Assets = append(b.Assets, asset.New(a.GetName(), a.GetBrowserDownloadURL(), int64(a.GetSize())))
	}

	return b
}

func classifyGitHubError(gameID string, err error) error {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
		synErr   *json.SyntaxError
		typeErr  *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return catalog.NewFetchError(gameID, catalog.KindCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return catalog.NewFetchError(gameID, catalog.KindTimeout, err)
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return catalog.NewFetchError(gameID, catalog.KindRateLimit, err)
	case errors.As(err, &respErr):
		return catalog.NewFetchError(gameID, kindForStatus(respErr.Response), err)
	case errors.As(err, &synErr), errors.As(err, &typeErr):
		return catalog.NewFetchError(gameID, catalog.KindMalformed, err)
	}

	return catalog.NewFetchError(gameID, catalog.KindNetwork, err)
}

func kindForStatus(resp *http.Response) catalog.FetchErrorKind {
	if resp == nil {
		return catalog.KindNetwork
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return catalog.KindAuth
	case http.StatusNotFound:
		return catalog.KindNotFound
	case http.StatusTooManyRequests:
		return catalog.KindRateLimit
	}

	return catalog.KindNetwork
}
