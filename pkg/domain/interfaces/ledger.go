package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// RunReader looks up run records
type RunReader interface {
	// GetRun returns the run, or nil when it does not exist
	GetRun(ctx context.Context, id model.RunID) (*model.Run, error)
}

// LedgerStore persists run records and per-release progress
type LedgerStore interface {
	RunReader

	PutRun(ctx context.Context, run *model.Run) error

	// GetRecord returns the ledger record for the key, or nil when it does not exist
	GetRecord(ctx context.Context, key string) (*model.LedgerRecord, error)
	PutRecord(ctx context.Context, record *model.LedgerRecord) error
}
