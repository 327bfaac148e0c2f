package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool used by Postgres. pgx.Tx satisfies it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DBTX = (*pgxpool.Pool)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS check_runs (
	id          UUID PRIMARY KEY,
	path        TEXT NOT NULL,
	ok          BOOLEAN NOT NULL,
	options     JSONB NOT NULL,
	report      JSONB,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS check_runs_created_at_idx ON check_runs (created_at DESC);
`

const (
	insertRunSQL = `
INSERT INTO check_runs (id, path, ok, options, report, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectRunSQL = `
SELECT id, path, ok, options, report, duration_ms, created_at
FROM check_runs WHERE id = $1`

	listRunsSQL = `
SELECT id, path, ok, options, report, duration_ms, created_at
FROM check_runs ORDER BY created_at DESC LIMIT $1`

	pruneRunsSQL = `DELETE FROM check_runs WHERE created_at < $1`
)

// Postgres stores runs in the check_runs table. Options and reports are
// kept as JSONB.
type Postgres struct {
	db DBTX
}

// NewPostgres returns a Store backed by db, usually a *pgxpool.Pool.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the check_runs table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, run *Run) error {
	fillDefaults(run)

	opts, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	var report []byte
	if run.Report != nil {
		if report, err = json.Marshal(run.Report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}

	_, err = p.db.Exec(ctx, insertRunSQL,
		pgtype.UUID{Bytes: run.ID, Valid: true},
		run.Path,
		run.OK,
		opts,
		report,
		run.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: run.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := p.db.QueryRow(ctx, selectRunSQL, pgtype.UUID{Bytes: id, Valid: true})
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := p.db.Query(ctx, listRunsSQL, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (p *Postgres) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := pgtype.Timestamptz{Time: time.Now().Add(-olderThan), Valid: true}
	tag, err := p.db.Exec(ctx, pruneRunsSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var (
		id         pgtype.UUID
		run        Run
		opts       []byte
		report     []byte
		durationMS int64
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &run.Path, &run.OK, &opts, &report, &durationMS, &createdAt); err != nil {
		return nil, err
	}

	run.ID = uuid.UUID(id.Bytes)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt = createdAt.Time

	if err := json.Unmarshal(opts, &run.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if len(report) > 0 {
		if err := json.Unmarshal(report, &run.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	return &run, nil
}
