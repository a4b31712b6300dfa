package painradar

import (
	"bytes"
	"cmp"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// WebConfig selects the web search backend: Google Custom Search when both
// Google keys are set, else Brave when its key is set, else DuckDuckGo HTML.
type WebConfig struct {
	GoogleAPIKey   string
	GoogleEngineID string
	BraveAPIKey    string

	GoogleURL     string
	BraveURL      string
	DuckDuckGoURL string
}

// Web searches the open web.
type Web struct {
	cfg    WebConfig
	client *http.Client
}

func NewWeb(cfg WebConfig, client *http.Client) *Web {
	cfg.GoogleURL = cmp.Or(cfg.GoogleURL, "https://www.googleapis.com/customsearch/v1")
	cfg.BraveURL = cmp.Or(cfg.BraveURL, "https://api.search.brave.com/res/v1/web/search")
	cfg.DuckDuckGoURL = cmp.Or(cfg.DuckDuckGoURL, "https://html.duckduckgo.com/html/")
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Web{cfg: cfg, client: client}
}

func (w *Web) Platform() dom.Platform { return dom.PlatformWeb }

// Backend names the provider Search will use.
func (w *Web) Backend() string {
	switch {
	case w.cfg.GoogleAPIKey != "" && w.cfg.GoogleEngineID != "":
		return "google"
	case w.cfg.BraveAPIKey != "":
		return "brave"
	default:
		return "duckduckgo"
	}
}

func (w *Web) Search(ctx context.Context, keyword string, limit int) ([]Post, error) {
	limit = clampLimit(limit, 100)
	switch w.Backend() {
	case "google":
		return w.google(ctx, keyword, limit)
	case "brave":
		return w.brave(ctx, keyword, limit)
	default:
		return w.duckDuckGo(ctx, keyword, limit)
	}
}

func webPost(link, title, snippet string) (Post, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return Post{}, false
	}
	title = strings.TrimSpace(title)
	snippet = strings.TrimSpace(snippet)
	content := snippet
	if title != "" {
		content = title + "\n\n" + snippet
	}
	origin := u.Scheme + "://" + u.Host
	return newPost(dom.PlatformWeb, u.String(), u.Hostname(), origin, title, content, u.String(), 0, 0, time.Now().UTC()), true
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// google pages through results ten at a time. A failing later page ends the
// search with what was collected so far.
func (w *Web) google(ctx context.Context, keyword string, limit int) ([]Post, error) {
	var out []Post
	for start := 1; len(out) < limit; start += 10 {
		q := url.Values{}
		q.Set("key", w.cfg.GoogleAPIKey)
		q.Set("cx", w.cfg.GoogleEngineID)
		q.Set("q", keyword)
		q.Set("start", strconv.Itoa(start))
		q.Set("num", "10")

		var res googleResponse
		if err := getJSON(ctx, w.client, dom.PlatformWeb, w.cfg.GoogleURL+"?"+q.Encode(), nil, &res); err != nil {
			if len(out) == 0 {
				return nil, err
			}
			break
		}
		if len(res.Items) == 0 {
			break
		}
		for _, it := range res.Items {
			if p, ok := webPost(it.Link, it.Title, it.Snippet); ok && len(out) < limit {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (w *Web) brave(ctx context.Context, keyword string, limit int) ([]Post, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("count", strconv.Itoa(min(limit, 20)))
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Subscription-Token", w.cfg.BraveAPIKey)

	var res braveResponse
	if err := getJSON(ctx, w.client, dom.PlatformWeb, w.cfg.BraveURL+"?"+q.Encode(), header, &res); err != nil {
		return nil, err
	}
	out := make([]Post, 0, len(res.Web.Results))
	for _, r := range res.Web.Results {
		if p, ok := webPost(r.URL, htmlText(r.Title), htmlText(r.Description)); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (w *Web) duckDuckGo(ctx context.Context, keyword string, limit int) ([]Post, error) {
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	header.Set("Accept", "text/html,application/xhtml+xml")

	body, err := get(ctx, w.client, dom.PlatformWeb, w.cfg.DuckDuckGoURL+"?q="+url.QueryEscape(keyword), header)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, SourceError(dom.PlatformWeb, false, err)
	}

	var out []Post
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			link, title, snippet := ddgResult(n)
			if p, ok := webPost(link, title, snippet); ok && title != "" {
				out = append(out, p)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func ddgResult(n *html.Node) (link, title, snippet string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				link, title = attr(n, "href"), nodeText(n)
			case hasClass(n, "result__snippet"):
				snippet = nodeText(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return unwrapDDGLink(link), title, snippet
}

// unwrapDDGLink resolves DuckDuckGo's //duckduckgo.com/l/?uddg=<target> redirects.
func unwrapDDGLink(link string) string {
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
