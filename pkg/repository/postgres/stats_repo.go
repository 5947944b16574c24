package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/matcher/pkg/stats"
)

// StatsRepository — счётчики использования в одной таблице имя→значение.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) (*StatsRepository, error) {
	r := &StatsRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *StatsRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stats_counters (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL DEFAULT 0
);
`)
	return err
}

func (r *StatsRepository) Inc(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO stats_counters (name, value) VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET value = stats_counters.value + 1
`, name)
	return err
}

func (r *StatsRepository) Snapshot(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, value FROM stats_counters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

var _ stats.Counter = (*StatsRepository)(nil)
