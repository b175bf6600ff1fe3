package ats

import (
	"context"
	"fmt"
	"iter"
)

// interviewPageSize is how many interviews OrderedByDate fetches per query.
const interviewPageSize = 100

// InterviewRegistry stores scheduled interviews. The lifecycle coordinator
// writes interviews through batches; the registry covers standalone access.
type InterviewRegistry struct {
	database Database
	idgen    IDGenerator
}

// NewInterviewRegistry creates a registry over database.
func NewInterviewRegistry(database Database, idgen IDGenerator) *InterviewRegistry {
	return &InterviewRegistry{database: database, idgen: idgen}
}

// Create assigns a fresh ID to iv and inserts it.
func (r *InterviewRegistry) Create(ctx context.Context, iv *Interview) error {
	iv.ID = r.idgen.New()
	if err := r.database.Commit(ctx, NewBatch().PutInterview(*iv)); err != nil {
		return storeError("creating interview", err)
	}
	return nil
}

// Get returns an interview, or ErrNotFound.
func (r *InterviewRegistry) Get(ctx context.Context, id string) (*Interview, error) {
	iv, err := r.database.FindInterviewByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: finding interview: %w", ErrPersistence, err)
	}
	if iv == nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, id)
	}
	return iv, nil
}

// DeleteByID removes an interview. Deleting an ID that does not exist
// succeeds.
func (r *InterviewRegistry) DeleteByID(ctx context.Context, id string) error {
	if err := r.database.Commit(ctx, NewBatch().DeleteInterview(id)); err != nil {
		return fmt.Errorf("%w: deleting interview: %w", ErrPersistence, err)
	}
	return nil
}

// DeleteAllForCandidate removes every interview of a candidate and returns
// how many there were.
func (r *InterviewRegistry) DeleteAllForCandidate(ctx context.Context, candidateID string) (int64, error) {
	existing, err := r.ForCandidate(ctx, candidateID)
	if err != nil {
		return 0, err
	}
	if err := r.database.Commit(ctx, NewBatch().DeleteCandidateInterviews(candidateID)); err != nil {
		return 0, fmt.Errorf("%w: deleting candidate interviews: %w", ErrPersistence, err)
	}
	return int64(len(existing)), nil
}

// ForCandidate lists a candidate's interviews ordered by date.
func (r *InterviewRegistry) ForCandidate(ctx context.Context, candidateID string) ([]*Interview, error) {
	ivs, err := r.database.FindInterviewsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing candidate interviews: %w", ErrPersistence, err)
	}
	return ivs, nil
}

// OrderedByDate yields every interview ascending by date. Pages are fetched
// lazily as the caller advances, and each range over the sequence starts a
// fresh walk. A fetch error is yielded once and ends the sequence.
func (r *InterviewRegistry) OrderedByDate(ctx context.Context) iter.Seq2[*Interview, error] {
	return func(yield func(*Interview, error) bool) {
		var cursor *Interview
		for {
			page, err := r.database.ListInterviewsAfter(ctx, cursor, interviewPageSize)
			if err != nil {
				yield(nil, fmt.Errorf("%w: listing interviews: %w", ErrPersistence, err))
				return
			}
			for _, iv := range page {
				if !yield(iv, nil) {
					return
				}
			}
			if len(page) < interviewPageSize {
				return
			}
			cursor = page[len(page)-1]
		}
	}
}

// All collects OrderedByDate into a slice.
func (r *InterviewRegistry) All(ctx context.Context) ([]*Interview, error) {
	var out []*Interview
	for iv, err := range r.OrderedByDate(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}
