package painradar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func TestRedditSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "crm pain", r.URL.Query().Get("q"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"id":"a1","author":"bob","title":"CRM is slow","selftext":"","permalink":"/r/x/a1","score":10,"num_comments":4,"created_utc":1700000000}}
		]}}`)
	}))
	defer srv.Close()

	posts, err := NewReddit(srv.URL, srv.Client()).Search(context.Background(), "crm pain", 500)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	p := posts[0]
	assert.Equal(t, dom.PlatformReddit, p.Platform)
	assert.Equal(t, "a1", p.PlatformID)
	assert.Equal(t, "CRM is slow", p.Content)
	assert.Equal(t, "https://reddit.com/r/x/a1", p.URL)
	assert.Equal(t, 22, p.Engagement)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), p.CreatedAt)
}

func TestRedditErrorIsRetryableOn503(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewReddit(srv.URL, srv.Client()).Search(context.Background(), "x", 10)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Retryable)
	assert.Equal(t, http.StatusServiceUnavailable, pe.Status)
}

func TestHackerNewsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search_by_date", r.URL.Path)
		assert.Equal(t, "ask_hn,show_hn", r.URL.Query().Get("tags"))
		assert.Equal(t, "points>20,num_comments>5", r.URL.Query().Get("numericFilters"))
		fmt.Fprint(w, `{"hits":[{"objectID":"42","author":"","title":"Ask HN: CRM?","story_text":"","points":30,"num_comments":7,"created_at":"2026-10-01T10:00:00Z"}]}`)
	}))
	defer srv.Close()

	posts, err := NewHackerNews(srv.URL, srv.Client()).Search(context.Background(), "crm", 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Unknown", posts[0].Author)
	assert.Equal(t, "Ask HN: CRM?", posts[0].Content)
	assert.Equal(t, "https://news.ycombinator.com/item?id=42", posts[0].URL)
	assert.Equal(t, 51, posts[0].Engagement)
}

func TestHabrSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ru/rss/search/", r.URL.Path)
		assert.Equal(t, "црм", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/"><channel>
<item>
  <title>Почему CRM не работает</title>
  <link>https://habr.com/ru/articles/1/</link>
  <guid>https://habr.com/ru/articles/1/</guid>
  <description><![CDATA[<p>Большая <b>проблема</b> внедрения</p>]]></description>
  <pubDate>Mon, 19 Oct 2026 10:00:00 +0300</pubDate>
  <dc:creator>ivan</dc:creator>
</item>
<item><title>no id</title></item>
</channel></rss>`)
	}))
	defer srv.Close()

	posts, err := NewHabr(srv.URL, srv.Client()).Search(context.Background(), "црм", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	p := posts[0]
	assert.Equal(t, "ivan", p.Author)
	assert.Equal(t, "Большая проблема внедрения", p.Content)
	assert.Equal(t, "https://habr.com/ru/users/ivan/", p.AuthorURL)
	assert.Equal(t, 2026, p.CreatedAt.Year())
}

func TestWebSearchDuckDuckGo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "crm", r.URL.Query().Get("q"))
		fmt.Fprint(w, `<html><body>
<div class="result results_links">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpost&rut=abc">Example <b>post</b></a>
  <a class="result__snippet" href="#">Our CRM keeps crashing</a>
</div>
<div class="result results_links"><a class="result__a" href="not a url">Broken</a></div>
</body></html>`)
	}))
	defer srv.Close()

	web := NewWeb(WebConfig{DuckDuckGoURL: srv.URL}, srv.Client())
	assert.Equal(t, "duckduckgo", web.Backend())
	posts, err := web.Search(context.Background(), "crm", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://example.com/post", posts[0].URL)
	assert.Equal(t, "example.com", posts[0].Author)
	assert.Equal(t, "Example post", posts[0].Title)
	assert.Equal(t, "Example post\n\nOur CRM keeps crashing", posts[0].Content)
}

func TestWebSearchGooglePaginates(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		if n > 1 {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"title":"A","link":"https://a.example/1","snippet":"s"},{"title":"B","link":"https://b.example/2","snippet":"s"}]}`)
	}))
	defer srv.Close()

	web := NewWeb(WebConfig{GoogleAPIKey: "k", GoogleEngineID: "cx", BraveAPIKey: "ignored", GoogleURL: srv.URL}, srv.Client())
	assert.Equal(t, "google", web.Backend())
	posts, err := web.Search(context.Background(), "crm", 30)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebSearchBrave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Subscription-Token"))
		fmt.Fprint(w, `{"web":{"results":[{"title":"<strong>CRM</strong> woes","url":"https://c.example/x","description":"it is slow"}]}}`)
	}))
	defer srv.Close()

	web := NewWeb(WebConfig{BraveAPIKey: "token", BraveURL: srv.URL}, srv.Client())
	posts, err := web.Search(context.Background(), "crm", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "CRM woes", posts[0].Title)
}
