package ats

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultMaxConflictRetries bounds how often a mutation is replayed after a
// concurrent write to the same candidate.
const DefaultMaxConflictRetries = 3

// noteDateLayout formats dates inside generated history notes.
const noteDateLayout = "02/01/2006 15:04"

// Service is the orchestration layer shared by the CLI and the HTTP API.
// It owns the lifecycle coordinator, the candidate directory, the reference
// catalog and the read-side views.
type Service struct {
	database   Database
	store      ObjectStore
	encryptor  Encryptor
	insights   InsightGenerator
	identity   Identity
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	interviews *InterviewRegistry

	policy       TransitionPolicy
	maxRetries   int
	location     *time.Location
	govIDPattern *regexp.Regexp
	validate     *validator.Validate
}

// Option tunes a Service.
type Option func(*Service)

// WithTransitionPolicy restricts status transitions. The default allows any.
func WithTransitionPolicy(p TransitionPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithMaxConflictRetries sets how many times a conflicting write is replayed.
// Zero disables replay.
func WithMaxConflictRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithLocation sets the time zone used in generated notes. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithGovernmentIDPattern requires government IDs to match re.
func WithGovernmentIDPattern(re *regexp.Regexp) Option {
	return func(s *Service) { s.govIDPattern = re }
}

// NewService creates a Service. encryptor and insights may be nil: documents
// are then stored in plaintext and AnalyzeFlow reports ErrOperationAborted.
func NewService(database Database, store ObjectStore, encryptor Encryptor, insights InsightGenerator, identity Identity, logger Logger, clock Clock, idgen IDGenerator, opts ...Option) *Service {
	s := &Service{
		database:   database,
		store:      store,
		encryptor:  encryptor,
		insights:   insights,
		identity:   identity,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		interviews: NewInterviewRegistry(database, idgen),
		policy:     AnyToAny,
		maxRetries: DefaultMaxConflictRetries,
		location:   time.UTC,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the time zone used in generated notes and calendar titles.
func (s *Service) Location() *time.Location {
	return s.location
}

// Interviews exposes the interview registry.
func (s *Service) Interviews() *InterviewRegistry {
	return s.interviews
}

// loadCandidate reads a candidate fresh from the store.
func (s *Service) loadCandidate(ctx context.Context, id string) (*Candidate, error) {
	c, err := s.database.FindCandidateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: loading candidate %s: %w", ErrPersistence, id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
	}
	return c, nil
}

// mutateCandidate reads the candidate, lets build apply its changes and
// queue the writes, and commits the batch. When the candidate changed in the
// meantime the whole cycle restarts from a fresh read, up to maxRetries times.
// The returned candidate carries the committed state and version.
func (s *Service) mutateCandidate(ctx context.Context, id string, build func(c *Candidate) (*Batch, error)) (*Candidate, error) {
	for attempt := 0; ; attempt++ {
		c, err := s.loadCandidate(ctx, id)
		if err != nil {
			return nil, err
		}

		batch, err := build(c)
		if err != nil {
			return nil, err
		}

		err = s.database.Commit(ctx, batch)
		if err == nil {
			c.Version++
			return c, nil
		}
		if errors.Is(err, ErrConflict) && attempt < s.maxRetries {
			s.logger.Warn("candidate changed concurrently, retrying", "candidate", id, "attempt", attempt+1)
			continue
		}
		return nil, commitError(err)
	}
}

// commitError classifies a failed Commit.
func commitError(err error) error {
	return storeError("committing", err)
}

// storeError wraps a Database write failure. Not-found and constraint
// violations keep their kind, everything else is a persistence failure.
func storeError(action string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, action, err)
}

// validationError converts validator output into an ErrValidation chain.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
