package painradar

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// Reddit searches the public JSON endpoint, no credentials needed.
type Reddit struct {
	baseURL string
	client  *http.Client
}

func NewReddit(baseURL string, client *http.Client) *Reddit {
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Reddit{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *Reddit) Platform() dom.Platform { return dom.PlatformReddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Author      string  `json:"author"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Search(ctx context.Context, keyword string, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("limit", strconv.Itoa(clampLimit(limit, 100)))
	q.Set("sort", "relevance")
	q.Set("t", "week")

	var listing redditListing
	if err := getJSON(ctx, r.client, dom.PlatformReddit, r.baseURL+"/search.json?"+q.Encode(), nil, &listing); err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		d := c.Data
		content := d.Selftext
		if content == "" {
			content = d.Title
		}
		out = append(out, newPost(dom.PlatformReddit, d.ID, d.Author, "https://reddit.com/user/"+d.Author,
			d.Title, content, "https://reddit.com"+d.Permalink, d.Score, d.NumComments,
			time.Unix(int64(d.CreatedUTC), 0).UTC()))
	}
	return out, nil
}
