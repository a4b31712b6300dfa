package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchRepo runs the quick search across the searchable entities of a workspace.
type SearchRepo interface {
	Search(ctx context.Context, workspaceID, q string, perEntity int) (dom.SearchResults, error)
}

type PGSearchRepo struct {
	db *pgxpool.Pool
}

func NewPGSearchRepo(db *pgxpool.Pool) *PGSearchRepo {
	return &PGSearchRepo{db: db}
}

var searchQueries = []struct {
	entity string
	sql    string
}{
	{"clients", `
		SELECT id::text, name, company FROM clients
		WHERE workspace_id = $1 AND (name ILIKE $2 OR company ILIKE $2 OR email ILIKE $2)
		ORDER BY updated_at DESC LIMIT $3`},
	{"projects", `
		SELECT id::text, name, status FROM projects
		WHERE workspace_id = $1 AND (name ILIKE $2 OR description ILIKE $2)
		ORDER BY updated_at DESC LIMIT $3`},
	{"tasks", `
		SELECT id::text, title, status FROM tasks
		WHERE workspace_id = $1 AND NOT is_archived AND (title ILIKE $2 OR description ILIKE $2)
		ORDER BY updated_at DESC LIMIT $3`},
	{"touches", `
		SELECT id::text, contact_name, contact_company FROM touches
		WHERE workspace_id = $1 AND (contact_name ILIKE $2 OR contact_company ILIKE $2 OR contact_email ILIKE $2)
		ORDER BY updated_at DESC LIMIT $3`},
}

func (r *PGSearchRepo) Search(ctx context.Context, workspaceID, q string, perEntity int) (dom.SearchResults, error) {
	pattern := utils.LikePattern(q)
	res := dom.SearchResults{}
	for _, sq := range searchQueries {
		rows, err := r.db.Query(ctx, sq.sql, workspaceID, pattern, perEntity)
		if err != nil {
			return dom.SearchResults{}, err
		}
		hits, err := collect(rows, func(row rowScanner) (dom.SearchHit, error) {
			var h dom.SearchHit
			err := row.Scan(&h.ID, &h.Title, &h.Subtitle)
			return h, err
		})
		if err != nil {
			return dom.SearchResults{}, err
		}
		switch sq.entity {
		case "clients":
			res.Clients = hits
		case "projects":
			res.Projects = hits
		case "tasks":
			res.Tasks = hits
		case "touches":
			res.Touches = hits
		}
	}
	return res, nil
}
