package testutil

import (
	"context"
	"sync"

	"ats-go/internal/ats"
)

// RecordingDatabase wraps a Database, counts candidate reads and commits,
// and can run a hook before each commit to simulate a concurrent writer.
type RecordingDatabase struct {
	ats.Database

	mu      sync.Mutex
	reads   int
	commits int
	batches []*ats.Batch

	// BeforeCommit runs before the n-th (1-based) commit reaches the store.
	BeforeCommit func(ctx context.Context, n int)
}

func NewRecordingDatabase(inner ats.Database) *RecordingDatabase {
	return &RecordingDatabase{Database: inner}
}

func (r *RecordingDatabase) FindCandidateByID(ctx context.Context, id string) (*ats.Candidate, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Database.FindCandidateByID(ctx, id)
}

func (r *RecordingDatabase) Commit(ctx context.Context, batch *ats.Batch) error {
	r.mu.Lock()
	r.commits++
	n := r.commits
	r.batches = append(r.batches, batch)
	hook := r.BeforeCommit
	r.mu.Unlock()

	if hook != nil {
		hook(ctx, n)
	}
	return r.Database.Commit(ctx, batch)
}

// Reads returns how many times a candidate was read by ID.
func (r *RecordingDatabase) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

// Commits returns how many batches were submitted.
func (r *RecordingDatabase) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

// Batches returns the submitted batches in order.
func (r *RecordingDatabase) Batches() []*ats.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ats.Batch(nil), r.batches...)
}
