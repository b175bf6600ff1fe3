package ats

import "context"

// Database is the document store holding candidates, interviews, reference
// data and the audit log. Finders return (nil, nil) when nothing matches.
// Version-checked writes return an error wrapping ErrConflict when the stored
// version moved, and ErrNotFound when the record is gone.
type Database interface {
	// Candidate operations

	// FindCandidateByID returns a candidate by ID.
	FindCandidateByID(ctx context.Context, id string) (*Candidate, error)

	// FindCandidateByGovernmentID returns the candidate with an exact government ID.
	FindCandidateByGovernmentID(ctx context.Context, governmentID string) (*Candidate, error)

	// ListCandidates returns all candidates, most recently updated first.
	ListCandidates(ctx context.Context) ([]*Candidate, error)

	// CreateCandidate inserts a new candidate. The stored version becomes 1
	// and is written back to c.
	CreateCandidate(ctx context.Context, c *Candidate) error

	// Interview operations

	// FindInterviewByID returns an interview by ID.
	FindInterviewByID(ctx context.Context, id string) (*Interview, error)

	// FindInterviewsByCandidate returns a candidate's interviews ordered by date.
	FindInterviewsByCandidate(ctx context.Context, candidateID string) ([]*Interview, error)

	// ListInterviewsAfter returns up to limit interviews ordered by (date, id)
	// strictly after the given cursor. A nil cursor starts from the beginning.
	ListInterviewsAfter(ctx context.Context, after *Interview, limit int) ([]*Interview, error)

	// Commit applies every operation of the batch atomically. Candidate
	// writes are checked against their expected version.
	Commit(ctx context.Context, batch *Batch) error

	// Reference data

	CreateJobPosition(ctx context.Context, p *JobPosition) error
	ListJobPositions(ctx context.Context) ([]*JobPosition, error)
	CreateInterviewer(ctx context.Context, i *Interviewer) error
	FindInterviewerByID(ctx context.Context, id string) (*Interviewer, error)
	ListInterviewers(ctx context.Context) ([]*Interviewer, error)

	// Audit operations

	// CreateOperation records the start of an operation and returns it with its ID.
	CreateOperation(ctx context.Context, op *Operation) (*Operation, error)

	// FinishOperation stamps the finish time and final status.
	FinishOperation(ctx context.Context, id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)

	// Close closes the database connection.
	Close() error
}
