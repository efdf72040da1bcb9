package gitlab

import "time"

type Release struct {
	Name            string     `json:"name"`
	TagName         string     `json:"tag_name"`
	Description     string     `json:"description"`
	CreatedAt       *time.Time `json:"created_at"`
	ReleasedAt      *time.Time `json:"released_at"`
	UpcomingRelease bool       `json:"upcoming_release"`
	Assets          Assets     `json:"assets"`
}

type Assets struct {
	Count int     `json:"count"`
	Links []*Link `json:"links"`
}

type Link struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	DirectAssetURL string `json:"direct_asset_url"`
	LinkType       string `json:"link_type"`
}

// GetURL returns the direct download URL of the link, falling back to the link itself
func (l *Link) GetURL() string {
	if l.DirectAssetURL != "" {
		return l.DirectAssetURL
	}
	return l.URL
}
