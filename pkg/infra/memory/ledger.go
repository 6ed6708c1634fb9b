package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

// Ledger keeps run records and release progress in process memory. Records
// do not survive a restart.
type Ledger struct {
	mu      sync.RWMutex
	runs    map[model.RunID]*model.Run
	records map[string]*model.LedgerRecord
}

var _ interfaces.LedgerStore = (*Ledger)(nil)

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		runs:    make(map[model.RunID]*model.Run),
		records: make(map[string]*model.LedgerRecord),
	}
}

func (l *Ledger) GetRun(_ context.Context, id model.RunID) (*model.Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runs[id].Clone(), nil
}

func (l *Ledger) PutRun(_ context.Context, run *model.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[run.ID] = run.Clone()
	return nil
}

func (l *Ledger) GetRecord(_ context.Context, key string) (*model.LedgerRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records[key].Clone(), nil
}

func (l *Ledger) PutRecord(_ context.Context, record *model.LedgerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[record.Key] = record.Clone()
	return nil
}
