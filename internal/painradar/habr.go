package painradar

import (
	"cmp"
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// Habr searches articles through the RSS search feed.
type Habr struct {
	baseURL string
	client  *http.Client
}

func NewHabr(baseURL string, client *http.Client) *Habr {
	if baseURL == "" {
		baseURL = "https://habr.com"
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Habr{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *Habr) Platform() dom.Platform { return dom.PlatformHabr }

type rssFeed struct {
	Items []struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		GUID        string `xml:"guid"`
		Description string `xml:"description"`
		PubDate     string `xml:"pubDate"`
		Creator     string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	} `xml:"channel>item"`
}

func (h *Habr) Search(ctx context.Context, keyword string, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("target_type", "posts")
	q.Set("order", "relevance")
	q.Set("fl", "ru")

	body, err := get(ctx, h.client, dom.PlatformHabr, h.baseURL+"/ru/rss/search/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, SourceError(dom.PlatformHabr, false, err)
	}

	limit = clampLimit(limit, 100)
	out := make([]Post, 0, min(limit, len(feed.Items)))
	for _, it := range feed.Items {
		if len(out) == limit {
			break
		}
		id := cmp.Or(strings.TrimSpace(it.GUID), strings.TrimSpace(it.Link))
		if id == "" {
			continue
		}
		author := cmp.Or(strings.TrimSpace(it.Creator), "Unknown")
		published, err := time.Parse(time.RFC1123Z, strings.TrimSpace(it.PubDate))
		if err != nil {
			published = time.Now().UTC()
		}
		out = append(out, newPost(dom.PlatformHabr, id, author, "https://habr.com/ru/users/"+author+"/",
			strings.TrimSpace(it.Title), htmlText(it.Description), strings.TrimSpace(it.Link), 0, 0, published))
	}
	return out, nil
}

// htmlText flattens an HTML fragment into plain text.
func htmlText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if t := strings.TrimSpace(string(z.Text())); t != "" {
				parts = append(parts, t)
			}
		}
	}
}
