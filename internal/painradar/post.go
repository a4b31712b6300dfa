package painradar

import (
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// Post is a search result normalised across platforms.
type Post struct {
	ID         string       `json:"id"`
	Platform   dom.Platform `json:"platform"`
	PlatformID string       `json:"platformId"`
	Author     string       `json:"author"`
	AuthorURL  string       `json:"authorUrl,omitempty"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	URL        string       `json:"url"`
	Likes      int          `json:"likes"`
	Comments   int          `json:"comments"`
	Shares     int          `json:"shares"`
	Engagement int          `json:"engagement"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func newPost(p dom.Platform, id, author, authorURL, title, content, url string, likes, comments int, created time.Time) Post {
	return Post{
		ID:         id,
		Platform:   p,
		PlatformID: id,
		Author:     author,
		AuthorURL:  authorURL,
		Title:      title,
		Content:    content,
		URL:        url,
		Likes:      likes,
		Comments:   comments,
		Engagement: Engagement(likes, comments, 0),
		CreatedAt:  created,
	}
}

// SocialPost converts p into the stored form for keywordID.
func (p Post) SocialPost(keywordID string) dom.SocialPost {
	return dom.SocialPost{
		KeywordID:   keywordID,
		Platform:    p.Platform,
		PlatformID:  p.PlatformID,
		Author:      p.Author,
		AuthorURL:   p.AuthorURL,
		Title:       p.Title,
		Content:     p.Content,
		URL:         p.URL,
		Likes:       p.Likes,
		Comments:    p.Comments,
		Shares:      p.Shares,
		Engagement:  p.Engagement,
		PublishedAt: p.CreatedAt,
	}
}
