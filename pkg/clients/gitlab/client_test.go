package gitlab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReleases(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/owner%2Frepo/releases", r.URL.EscapedPath())
		assert.Equal(t, "secret", r.Header.Get("PRIVATE-TOKEN"))

		if r.URL.Query().Get("page") == "1" {
			w.Header().Set("X-Next-Page", "2")
		}

		_, _ = w.Write([]byte(`[{"tag_name":"v1.0.0","upcoming_release":false,"assets":{"links":[
			{"name":"game-linux-x64.tar.gz","url":"https://example.com/l","direct_asset_url":"https://example.com/d"}
		]}}]`))
	}))
	defer ts.Close()

	c := NewClient(ts.Client())
	c.SetBaseURL(ts.URL + "/api/v4/")
	c.SetToken("secret")

	releases, next, err := c.ListReleases(context.Background(), "owner/repo", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
	require.Len(t, releases, 1)
	assert.Equal(t, "v1.0.0", releases[0].TagName)
	assert.Equal(t, "https://example.com/d", releases[0].Assets.Links[0].GetURL())

	_, next, err = c.ListReleases(context.Background(), "owner/repo", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestListReleases_Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"404 Project Not Found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.Client())
	c.SetBaseURL(ts.URL)

	_, _, err := c.ListReleases(context.Background(), "owner/missing", 1)
	require.Error(t, err)

	var er *ErrorResponse
	require.True(t, errors.As(err, &er))
	assert.Equal(t, http.StatusNotFound, er.StatusCode)
}
