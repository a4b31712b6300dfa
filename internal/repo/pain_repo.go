package repo

import (
	"context"
	"errors"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PainRepo stores Pain Radar keywords, scans, fetched posts and extracted pains.
type PainRepo interface {
	CreateKeyword(ctx context.Context, k dom.PainKeyword) (dom.PainKeyword, error)
	GetKeyword(ctx context.Context, workspaceID, id string) (dom.PainKeyword, error)
	ListKeywords(ctx context.Context, workspaceID string) ([]dom.PainKeyword, error)
	UpdateKeyword(ctx context.Context, k dom.PainKeyword) (dom.PainKeyword, error)
	DeleteKeyword(ctx context.Context, workspaceID, id string) error

	CreateScan(ctx context.Context, s dom.PainScan) (dom.PainScan, error)
	GetScan(ctx context.Context, workspaceID, id string) (dom.PainScan, error)
	FinishScan(ctx context.Context, s dom.PainScan) error

	UpsertPost(ctx context.Context, p dom.SocialPost) (dom.PostUpsert, error)
	ListPosts(ctx context.Context, workspaceID string, f dom.PostFilter) ([]dom.SocialPost, int, error)
	PostsByIDs(ctx context.Context, workspaceID string, ids []string) ([]dom.SocialPost, error)
	MarkAnalyzed(ctx context.Context, ids []string, at time.Time) error

	CreatePains(ctx context.Context, pains []dom.ExtractedPain) error
	ListPains(ctx context.Context, workspaceID string, f dom.PainFilter) ([]dom.ExtractedPain, int, error)
	GetPain(ctx context.Context, workspaceID, id string) (dom.ExtractedPain, error)
	DeletePain(ctx context.Context, workspaceID, id string) error
	Dashboard(ctx context.Context, workspaceID string, since time.Time) (dom.PainDashboard, error)

	ProjectsWithPain(ctx context.Context, workspaceID string) ([]dom.Project, error)
}

type PGPainRepo struct {
	db *pgxpool.Pool
}

func NewPGPainRepo(db *pgxpool.Pool) *PGPainRepo {
	return &PGPainRepo{db: db}
}

// keywords

const keywordColumns = `k.id::text, k.workspace_id::text, k.keyword, k.category, k.is_active,
	(SELECT count(*) FROM social_posts sp WHERE sp.keyword_id = k.id)::int,
	k.created_by_id::text, k.created_at, k.updated_at`

func scanKeyword(row rowScanner) (dom.PainKeyword, error) {
	var k dom.PainKeyword
	err := row.Scan(&k.ID, &k.WorkspaceID, &k.Keyword, &k.Category, &k.IsActive, &k.PostCount,
		&k.CreatedByID, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

func (r *PGPainRepo) CreateKeyword(ctx context.Context, k dom.PainKeyword) (dom.PainKeyword, error) {
	return scanKeyword(r.db.QueryRow(ctx, `
		INSERT INTO pain_keywords AS k (workspace_id, keyword, category, is_active, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+keywordColumns, k.WorkspaceID, k.Keyword, k.Category, k.IsActive, k.CreatedByID))
}

func (r *PGPainRepo) GetKeyword(ctx context.Context, workspaceID, id string) (dom.PainKeyword, error) {
	return scanKeyword(r.db.QueryRow(ctx,
		`SELECT `+keywordColumns+` FROM pain_keywords k WHERE k.workspace_id = $1 AND k.id = $2`, workspaceID, id))
}

func (r *PGPainRepo) ListKeywords(ctx context.Context, workspaceID string) ([]dom.PainKeyword, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+keywordColumns+` FROM pain_keywords k WHERE k.workspace_id = $1 ORDER BY k.created_at DESC`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanKeyword)
}

func (r *PGPainRepo) UpdateKeyword(ctx context.Context, k dom.PainKeyword) (dom.PainKeyword, error) {
	return scanKeyword(r.db.QueryRow(ctx, `
		UPDATE pain_keywords AS k SET keyword = $3, category = $4, is_active = $5, updated_at = NOW()
		WHERE k.workspace_id = $1 AND k.id = $2
		RETURNING `+keywordColumns, k.WorkspaceID, k.ID, k.Keyword, k.Category, k.IsActive))
}

func (r *PGPainRepo) DeleteKeyword(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM pain_keywords WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

// scans

const scanColumns = `id::text, workspace_id::text, keyword_id::text, platform, status, posts_found, posts_new,
	error_message, started_at, completed_at`

func scanScan(row rowScanner) (dom.PainScan, error) {
	var s dom.PainScan
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.KeywordID, &s.Platform, &s.Status, &s.PostsFound, &s.PostsNew,
		&s.ErrorMessage, &s.StartedAt, &s.CompletedAt)
	return s, err
}

func (r *PGPainRepo) CreateScan(ctx context.Context, s dom.PainScan) (dom.PainScan, error) {
	return scanScan(r.db.QueryRow(ctx, `
		INSERT INTO pain_scans (id, workspace_id, keyword_id, platform, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+scanColumns, s.ID, s.WorkspaceID, s.KeywordID, s.Platform, s.Status, s.StartedAt))
}

func (r *PGPainRepo) GetScan(ctx context.Context, workspaceID, id string) (dom.PainScan, error) {
	return scanScan(r.db.QueryRow(ctx,
		`SELECT `+scanColumns+` FROM pain_scans WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

func (r *PGPainRepo) FinishScan(ctx context.Context, s dom.PainScan) error {
	return affected(r.db.Exec(ctx, `
		UPDATE pain_scans SET status = $2, posts_found = $3, posts_new = $4, error_message = $5, completed_at = $6
		WHERE id = $1`, s.ID, s.Status, s.PostsFound, s.PostsNew, s.ErrorMessage, s.CompletedAt))
}

// posts

const postColumns = `sp.id::text, sp.keyword_id::text, k.workspace_id::text, k.keyword, k.category, sp.platform,
	sp.platform_id, sp.author, sp.author_url, sp.title, sp.content, sp.url, sp.likes, sp.comments, sp.shares,
	sp.engagement, sp.published_at, sp.is_analyzed, sp.analyzed_at, sp.created_at`

func scanPost(row rowScanner) (dom.SocialPost, error) {
	var p dom.SocialPost
	err := row.Scan(&p.ID, &p.KeywordID, &p.WorkspaceID, &p.Keyword, &p.Category, &p.Platform,
		&p.PlatformID, &p.Author, &p.AuthorURL, &p.Title, &p.Content, &p.URL, &p.Likes, &p.Comments, &p.Shares,
		&p.Engagement, &p.PublishedAt, &p.IsAnalyzed, &p.AnalyzedAt, &p.CreatedAt)
	return p, err
}

// UpsertPost inserts a new post, refreshes the metrics of a known post whose
// content changed, and leaves an identical post untouched.
func (r *PGPainRepo) UpsertPost(ctx context.Context, p dom.SocialPost) (dom.PostUpsert, error) {
	var inserted bool
	err := r.db.QueryRow(ctx, `
		INSERT INTO social_posts (keyword_id, platform, platform_id, author, author_url, title, content, url,
			likes, comments, shares, engagement, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (platform, platform_id) DO UPDATE
			SET content = EXCLUDED.content, likes = EXCLUDED.likes, comments = EXCLUDED.comments,
				shares = EXCLUDED.shares, engagement = EXCLUDED.engagement
			WHERE social_posts.content IS DISTINCT FROM EXCLUDED.content
		RETURNING (xmax = 0)`,
		p.KeywordID, p.Platform, p.PlatformID, p.Author, p.AuthorURL, p.Title, p.Content, p.URL,
		p.Likes, p.Comments, p.Shares, p.Engagement, p.PublishedAt).Scan(&inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.PostUnchanged, nil
	}
	if err != nil {
		return dom.PostUnchanged, err
	}
	if inserted {
		return dom.PostInserted, nil
	}
	return dom.PostUpdated, nil
}

func (r *PGPainRepo) ListPosts(ctx context.Context, workspaceID string, f dom.PostFilter) ([]dom.SocialPost, int, error) {
	where := `
		FROM social_posts sp JOIN pain_keywords k ON k.id = sp.keyword_id
		WHERE k.workspace_id = $1
		  AND ($2 = '' OR sp.keyword_id::text = $2)
		  AND ($3::boolean IS NULL OR sp.is_analyzed = $3)
		  AND ($4 = '' OR sp.content ILIKE $5 OR sp.author ILIKE $5)`
	args := []any{workspaceID, f.KeywordID, f.IsAnalyzed, f.Search, utils.LikePattern(f.Search)}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*)::int`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+where+`
		ORDER BY sp.published_at DESC LIMIT $6 OFFSET $7`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanPost)
	return list, total, err
}

// PostsByIDs returns the posts among ids that belong to workspaceID.
func (r *PGPainRepo) PostsByIDs(ctx context.Context, workspaceID string, ids []string) ([]dom.SocialPost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM social_posts sp JOIN pain_keywords k ON k.id = sp.keyword_id
		WHERE k.workspace_id = $1 AND sp.id::text = ANY($2)
		ORDER BY sp.published_at DESC`, workspaceID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPost)
}

func (r *PGPainRepo) MarkAnalyzed(ctx context.Context, ids []string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE social_posts SET is_analyzed = TRUE, analyzed_at = $2 WHERE id::text = ANY($1)`, ids, at)
	return err
}

// pains

const painColumns = `ep.id::text, ep.workspace_id::text, ep.post_id::text, ep.pain_text, ep.category, ep.severity,
	ep.sentiment, ep.confidence, ep.keywords, ep.context, ep.created_at`

func scanPain(row rowScanner, post *dom.SocialPost) (dom.ExtractedPain, error) {
	var p dom.ExtractedPain
	dest := []any{&p.ID, &p.WorkspaceID, &p.PostID, &p.PainText, &p.Category, &p.Severity,
		&p.Sentiment, &p.Confidence, &p.Keywords, &p.Context, &p.CreatedAt}
	if post != nil {
		dest = append(dest, &post.Platform, &post.Author, &post.URL, &post.Title)
	}
	err := row.Scan(dest...)
	if post != nil {
		post.ID = p.PostID
		p.Post = post
	}
	return p, err
}

// CreatePains inserts pains in a single batch.
func (r *PGPainRepo) CreatePains(ctx context.Context, pains []dom.ExtractedPain) error {
	if len(pains) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pains {
		keywords := p.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		batch.Queue(`
			INSERT INTO extracted_pains (workspace_id, post_id, pain_text, category, severity, sentiment,
				confidence, keywords, context)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.WorkspaceID, p.PostID, p.PainText, p.Category, p.Severity, p.Sentiment, p.Confidence,
			keywords, p.Context)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

func (r *PGPainRepo) ListPains(ctx context.Context, workspaceID string, f dom.PainFilter) ([]dom.ExtractedPain, int, error) {
	where := `
		FROM extracted_pains ep JOIN social_posts sp ON sp.id = ep.post_id
		WHERE ep.workspace_id = $1
		  AND ($2 = '' OR ep.category = $2)
		  AND ($3 = '' OR ep.severity = $3)
		  AND ($4 = '' OR sp.keyword_id::text = $4)`
	args := []any{workspaceID, string(f.Category), string(f.Severity), f.KeywordID}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*)::int`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+painColumns+`, sp.platform, sp.author, sp.url, sp.title`+where+`
		ORDER BY ep.created_at DESC LIMIT $5 OFFSET $6`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, func(row rowScanner) (dom.ExtractedPain, error) {
		return scanPain(row, &dom.SocialPost{})
	})
	return list, total, err
}

func (r *PGPainRepo) GetPain(ctx context.Context, workspaceID, id string) (dom.ExtractedPain, error) {
	return scanPain(r.db.QueryRow(ctx, `
		SELECT `+painColumns+`, sp.platform, sp.author, sp.url, sp.title
		FROM extracted_pains ep JOIN social_posts sp ON sp.id = ep.post_id
		WHERE ep.workspace_id = $1 AND ep.id = $2`, workspaceID, id), &dom.SocialPost{})
}

func (r *PGPainRepo) DeletePain(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM extracted_pains WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

// Dashboard aggregates pains created since the given time.
func (r *PGPainRepo) Dashboard(ctx context.Context, workspaceID string, since time.Time) (dom.PainDashboard, error) {
	d := dom.PainDashboard{
		ByCategory: map[dom.PainCategory]int{},
		BySeverity: map[dom.PainSeverity]int{},
		Trend:      []dom.PainTrendPoint{},
	}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM extracted_pains WHERE workspace_id = $1 AND created_at >= $2)::int,
			(SELECT count(*) FROM social_posts sp JOIN pain_keywords k ON k.id = sp.keyword_id
				WHERE k.workspace_id = $1 AND sp.created_at >= $2)::int,
			(SELECT COALESCE(avg(sentiment), 0) FROM extracted_pains WHERE workspace_id = $1 AND created_at >= $2)::float8,
			(SELECT count(*) FROM extracted_pains WHERE workspace_id = $1 AND created_at >= $2 AND sentiment > 0.2)::int,
			(SELECT count(*) FROM extracted_pains WHERE workspace_id = $1 AND created_at >= $2 AND sentiment < -0.2)::int`,
		workspaceID, since).Scan(&d.TotalPains, &d.TotalPosts, &d.AvgSentiment,
		&d.Sentiment.Positive, &d.Sentiment.Negative)
	if err != nil {
		return d, err
	}
	d.Sentiment.Neutral = d.TotalPains - d.Sentiment.Positive - d.Sentiment.Negative

	rows, err := r.db.Query(ctx, `
		SELECT category, severity, count(*)::int FROM extracted_pains
		WHERE workspace_id = $1 AND created_at >= $2
		GROUP BY category, severity`, workspaceID, since)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	for rows.Next() {
		var c dom.PainCategory
		var s dom.PainSeverity
		var n int
		if err := rows.Scan(&c, &s, &n); err != nil {
			return d, err
		}
		d.ByCategory[c] += n
		d.BySeverity[s] += n
	}
	if err := rows.Err(); err != nil {
		return d, err
	}
	best := 0
	for c, n := range d.ByCategory {
		if n > best || (n == best && d.TopCategory != nil && c < *d.TopCategory) {
			cat := c
			d.TopCategory, best = &cat, n
		}
	}

	trend, err := r.db.Query(ctx, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD'), count(*)::int, COALESCE(avg(sentiment), 0)::float8
		FROM extracted_pains
		WHERE workspace_id = $1 AND created_at >= $2
		GROUP BY 1 ORDER BY 1 ASC`, workspaceID, since)
	if err != nil {
		return d, err
	}
	d.Trend, err = collect(trend, func(row rowScanner) (dom.PainTrendPoint, error) {
		var p dom.PainTrendPoint
		err := row.Scan(&p.Date, &p.Count, &p.Sentiment)
		return p, err
	})
	if err != nil {
		return d, err
	}

	top, err := r.db.Query(ctx, `
		SELECT `+painColumns+`, sp.platform, sp.author, sp.url, sp.title
		FROM extracted_pains ep JOIN social_posts sp ON sp.id = ep.post_id
		WHERE ep.workspace_id = $1 AND ep.created_at >= $2
		ORDER BY CASE ep.severity WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC,
			ep.confidence DESC
		LIMIT 10`, workspaceID, since)
	if err != nil {
		return d, err
	}
	d.TopPains, err = collect(top, func(row rowScanner) (dom.ExtractedPain, error) {
		return scanPain(row, &dom.SocialPost{})
	})
	return d, err
}

// ProjectsWithPain lists the workspace projects that describe the pain they solve.
func (r *PGPainRepo) ProjectsWithPain(ctx context.Context, workspaceID string) ([]dom.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.workspace_id = $1 AND btrim(p.pain_description) <> ''
		ORDER BY p.created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProject)
}
