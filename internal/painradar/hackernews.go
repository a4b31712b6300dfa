package painradar

import (
	"cmp"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// HackerNews searches Ask HN and Show HN through the Algolia API.
type HackerNews struct {
	baseURL string
	client  *http.Client
}

func NewHackerNews(baseURL string, client *http.Client) *HackerNews {
	if baseURL == "" {
		baseURL = "https://hn.algolia.com/api/v1"
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &HackerNews{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *HackerNews) Platform() dom.Platform { return dom.PlatformHackerNews }

type hnResponse struct {
	Hits []struct {
		ObjectID    string    `json:"objectID"`
		Author      string    `json:"author"`
		Title       string    `json:"title"`
		StoryTitle  string    `json:"story_title"`
		StoryText   string    `json:"story_text"`
		CommentText string    `json:"comment_text"`
		Points      int       `json:"points"`
		NumComments int       `json:"num_comments"`
		CreatedAt   time.Time `json:"created_at"`
	} `json:"hits"`
}

func (h *HackerNews) Search(ctx context.Context, keyword string, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("tags", "ask_hn,show_hn")
	q.Set("numericFilters", "points>20,num_comments>5")
	q.Set("hitsPerPage", strconv.Itoa(clampLimit(limit, 100)))

	var res hnResponse
	if err := getJSON(ctx, h.client, dom.PlatformHackerNews, h.baseURL+"/search_by_date?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}

	out := make([]Post, 0, len(res.Hits))
	for _, hit := range res.Hits {
		author := cmp.Or(hit.Author, "Unknown")
		title := cmp.Or(hit.Title, hit.StoryTitle)
		content := cmp.Or(hit.StoryText, hit.CommentText, hit.Title)
		out = append(out, newPost(dom.PlatformHackerNews, hit.ObjectID, author,
			"https://news.ycombinator.com/user?id="+author, title, content,
			"https://news.ycombinator.com/item?id="+hit.ObjectID, hit.Points, hit.NumComments, hit.CreatedAt))
	}
	return out, nil
}
