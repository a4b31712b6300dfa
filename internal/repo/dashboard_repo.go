package repo

import (
	"context"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardRepo interface {
	Metrics(ctx context.Context, workspaceID string, now time.Time) (dom.DashboardMetrics, error)
}

type PGDashboardRepo struct {
	db *pgxpool.Pool
}

func NewPGDashboardRepo(db *pgxpool.Pool) *PGDashboardRepo {
	return &PGDashboardRepo{db: db}
}

func (r *PGDashboardRepo) Metrics(ctx context.Context, workspaceID string, now time.Time) (dom.DashboardMetrics, error) {
	m := dom.DashboardMetrics{ProjectsByStatus: map[string]int{}, TouchesByStatus: map[string]int{}}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM clients WHERE workspace_id = $1 AND status = 'ACTIVE')::int,
			(SELECT count(*) FROM tasks WHERE workspace_id = $1 AND NOT is_archived
				AND status NOT IN ('COMPLETED', 'CANCELLED'))::int,
			(SELECT count(*) FROM tasks WHERE workspace_id = $1 AND NOT is_archived
				AND status NOT IN ('COMPLETED', 'CANCELLED') AND due_date < $2)::int,
			(SELECT count(*) FROM tasks WHERE workspace_id = $1 AND status = 'COMPLETED'
				AND completed_at >= $2::timestamptz - interval '7 days')::int`,
		workspaceID, now).Scan(&m.ActiveClients, &m.OpenTasks, &m.OverdueTasks, &m.CompletedLast7Days)
	if err != nil {
		return m, err
	}
	if err := r.countBy(ctx, `SELECT status, count(*)::int FROM projects WHERE workspace_id = $1 GROUP BY status`,
		workspaceID, m.ProjectsByStatus); err != nil {
		return m, err
	}
	if err := r.countBy(ctx, `SELECT status, count(*)::int FROM touches WHERE workspace_id = $1 GROUP BY status`,
		workspaceID, m.TouchesByStatus); err != nil {
		return m, err
	}
	total := 0
	for _, n := range m.TouchesByStatus {
		total += n
	}
	if total > 0 {
		m.ConversionRate = float64(m.TouchesByStatus[string(dom.TouchConverted)]) / float64(total)
	}
	return m, nil
}

func (r *PGDashboardRepo) countBy(ctx context.Context, query, workspaceID string, into map[string]int) error {
	rows, err := r.db.Query(ctx, query, workspaceID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
