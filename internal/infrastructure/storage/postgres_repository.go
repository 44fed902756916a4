package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists scored signals into the signals table.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.SignalRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertBatch writes the whole cycle batch in one statement keyed on link.
// Re-running the same batch is idempotent: conflicts update the scored
// columns in place.
func (r *PostgresRepository) UpsertBatch(ctx context.Context, signals []domain.Signal) error {
	if r.db == nil || len(signals) == 0 {
		return nil
	}

	query, args, err := buildUpsert(signals).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert signals: %w", err)
	}

	return nil
}

// RecentLinks returns the newest persisted links for seeding the seen set.
func (r *PostgresRepository) RecentLinks(ctx context.Context, limit int) ([]string, error) {
	return r.recentColumn(ctx, "link", limit)
}

// RecentHeadlines returns the newest persisted headlines for warming the
// embedding cache.
func (r *PostgresRepository) RecentHeadlines(ctx context.Context, limit int) ([]string, error) {
	return r.recentColumn(ctx, "headline", limit)
}

func (r *PostgresRepository) recentColumn(ctx context.Context, column string, limit int) ([]string, error) {
	if r.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := psql.Select(column).
		From("signals").
		OrderBy("timestamp DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return values, nil
}

func buildUpsert(signals []domain.Signal) sq.InsertBuilder {
	builder := psql.Insert("signals").
		Columns("link", "timestamp", "source", "headline", "full_text", "risk_score", "priority", "reason", "vectors")

	for _, s := range signals {
		builder = builder.Values(
			s.Link,
			s.Timestamp,
			s.Source,
			s.Headline,
			s.FullText,
			s.RiskScore,
			string(s.Priority),
			s.Reason,
			s.Vectors,
		)
	}

	return builder.Suffix(`ON CONFLICT (link) DO UPDATE
              SET risk_score = EXCLUDED.risk_score,
                  priority = EXCLUDED.priority,
                  reason = EXCLUDED.reason,
                  vectors = EXCLUDED.vectors`)
}
