package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/starlinker/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	summary     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_devices (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	sln     TEXT NOT NULL,
	status  TEXT NOT NULL,
	device  TEXT NOT NULL,
	PRIMARY KEY (run_id, sln)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_devices_status ON run_devices(run_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, devices []*model.Device) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, summary) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), string(summaryJSON),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	for _, d := range devices {
		deviceJSON, err := json.Marshal(d)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal device %s", d.Sln)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_devices (run_id, sln, status, device) VALUES (?, ?, ?, ?)`,
			run.ID, d.Sln, string(d.Status), string(deviceJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert device %s", d.Sln)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, summary FROM runs WHERE id = ?`,
		runID,
	)

	var r model.Run
	var summaryJSON string
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &summaryJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal summary")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, started_at, finished_at, summary FROM runs ORDER BY started_at DESC`
	var args []any

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var summaryJSON string
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &summaryJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) RunDevices(ctx context.Context, runID string) ([]*model.Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT device FROM run_devices WHERE run_id = ? ORDER BY sln`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: run devices %s", runID)
	}
	defer rows.Close()

	var devices []*model.Device
	for rows.Next() {
		var deviceJSON string
		if err := rows.Scan(&deviceJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan device")
		}
		var d model.Device
		if err := json.Unmarshal([]byte(deviceJSON), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal device")
		}
		devices = append(devices, &d)
	}
	return devices, eris.Wrap(rows.Err(), "sqlite: run devices iterate")
}

