package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/starlinker/internal/db"
	"github.com/sells-group/starlinker/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller owns the pool's
// lifecycle.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	summary     JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS run_devices (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	sln     TEXT NOT NULL,
	status  TEXT NOT NULL,
	device  JSONB NOT NULL,
	PRIMARY KEY (run_id, sln)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_devices_status ON run_devices(run_id, status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, devices []*model.Device) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, finished_at, summary) VALUES ($1, $2, $3, $4)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), summaryJSON,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	rows := make([][]any, 0, len(devices))
	for _, d := range devices {
		deviceJSON, err := json.Marshal(d)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal device %s", d.Sln)
		}
		rows = append(rows, []any{run.ID, d.Sln, string(d.Status), deviceJSON})
	}

	_, err = db.CopyInto(ctx, s.pool, "run_devices", []string{"run_id", "sln", "status", "device"}, rows)
	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at, summary FROM runs WHERE id = $1`,
		runID,
	)

	var r model.Run
	var summaryJSON []byte
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &summaryJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if err := json.Unmarshal(summaryJSON, &r.Summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal summary")
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, finished_at, summary FROM runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var summaryJSON []byte
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &summaryJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(summaryJSON, &r.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) RunDevices(ctx context.Context, runID string) ([]*model.Device, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT device FROM run_devices WHERE run_id = $1 ORDER BY sln`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: run devices %s", runID)
	}
	defer rows.Close()

	var devices []*model.Device
	for rows.Next() {
		var deviceJSON []byte
		if err := rows.Scan(&deviceJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan device")
		}
		var d model.Device
		if err := json.Unmarshal(deviceJSON, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal device")
		}
		devices = append(devices, &d)
	}
	return devices, eris.Wrap(rows.Err(), "postgres: run devices iterate")
}
