// Package store persists reconciliation runs and their per-device results
// for audit history, on SQLite or PostgreSQL.
package store

import (
	"context"

	"github.com/sells-group/starlinker/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	// SaveRun persists a completed run together with its device results.
	SaveRun(ctx context.Context, run *model.Run, devices []*model.Device) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	// RunDevices returns the device results of a run, ordered by SLN.
	RunDevices(ctx context.Context, runID string) ([]*model.Device, error)

	Migrate(ctx context.Context) error
	Close() error
}
