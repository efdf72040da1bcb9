package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/asset"
	"github.com/intelorca/openlauncher/pkg/catalog"
	"github.com/intelorca/openlauncher/pkg/clients/gitlab"
	"github.com/intelorca/openlauncher/pkg/game"
)

// GitLab lists the releases of a project through the GitLab REST API
type GitLab struct {
	httpClient *http.Client
	token      string
	maxPages   int
}

func NewGitLab(client *http.Client, token string) *GitLab {
	return &GitLab{
		httpClient: client,
		token:      token,
		maxPages:   DefaultMaxPages,
	}
}

func (s *GitLab) GetSource() string {
	return game.SourceGitLab
}

// ListBuilds returns the releases of the game's project. Upcoming releases are not releases.
func (s *GitLab) ListBuilds(ctx context.Context, g *game.Game, includePrerelease bool) ([]*catalog.Build, error) {
	client := gitlab.NewClient(s.httpClient)
	client.SetBaseURL(g.BaseURL)
	client.SetToken(s.token)

	var builds []*catalog.Build

	page := 1
	for i := 0; i < s.maxPages && page != 0; i++ {
		logrus.WithField("game", g.ID).Tracef("listing releases of %s, page %d", g.GetRepository(), page)

		releases, next, err := client.ListReleases(ctx, g.GetRepository(), page)
		if err != nil {
			return nil, classifyGitLabError(g.ID, err)
		}

		for _, r := range releases {
			b := gitlabReleaseToBuild(r)
			if !includePrerelease && !b.IsRelease {
				continue
			}
			builds = append(builds, b)
		}

		page = next
	}

	return builds, nil
}

func gitlabReleaseToBuild(r *gitlab.Release) *catalog.Build {
	version := r.TagName
	if version == "" {
		version = r.Name
	}

	b := &catalog.Build{
		Version:     version,
		IsRelease:   !r.UpcomingRelease,
		PublishedAt: r.ReleasedAt,
	}

	for _, l := range r.Assets.Links {
		b.Assets = append(b.Assets, asset.New(l.Name, l.GetURL(), 0))
	}

	return b
}

func classifyGitLabError(gameID string, err error) error {
	var (
		respErr *gitlab.ErrorResponse
		synErr  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return catalog.NewFetchError(gameID, catalog.KindCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return catalog.NewFetchError(gameID, catalog.KindTimeout, err)
	case errors.As(err, &respErr):
		return catalog.NewFetchError(gameID, kindForStatus(&http.Response{StatusCode: respErr.StatusCode}), err)
	case errors.As(err, &synErr), errors.As(err, &typeErr):
		return catalog.NewFetchError(gameID, catalog.KindMalformed, err)
	}

	return catalog.NewFetchError(gameID, catalog.KindNetwork, err)
}
