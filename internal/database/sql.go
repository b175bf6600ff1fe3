package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"ats-go/internal/ats"
	"ats-go/internal/database/migrations"
)

// SQLDatabase implements ats.Database over database/sql. Candidate history
// and documents are stored as JSON columns so a candidate reads back as one
// document.
type SQLDatabase struct {
	db      *sql.DB
	queries *Queries
	dialect Dialect
	path    string
	clock   ats.Clock
}

// NewSQLiteDatabase opens a SQLite database. path can be a file path or
// ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	s := NewSQLDatabaseFromDB(db, SQLiteDialect)
	s.path = path
	return s, nil
}

// NewPostgresDatabase opens a PostgreSQL database from a lib/pq DSN.
func NewPostgresDatabase(dsn string) (*SQLDatabase, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSQLDatabaseFromDB(db, PostgresDialect), nil
}

// NewSQLDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLDatabaseFromDB(db *sql.DB, dialect Dialect) *SQLDatabase {
	return &SQLDatabase{
		db:      db,
		queries: NewQueries(db, dialect),
		dialect: dialect,
		clock:   ats.RealClock{},
	}
}

// OpenConnection opens and configures a SQLite connection pool with foreign
// keys enforced on every connection. An in-memory database is limited to one
// connection, since each connection would otherwise see its own database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Candidate operations

func (s *SQLDatabase) FindCandidateByID(ctx context.Context, id string) (*ats.Candidate, error) {
	c, err := s.queries.GetCandidate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding candidate by id: %w", err)
	}
	return c, nil
}

func (s *SQLDatabase) FindCandidateByGovernmentID(ctx context.Context, governmentID string) (*ats.Candidate, error) {
	c, err := s.queries.GetCandidateByGovernmentID(ctx, governmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding candidate by government id: %w", err)
	}
	return c, nil
}

func (s *SQLDatabase) ListCandidates(ctx context.Context) ([]*ats.Candidate, error) {
	cs, err := s.queries.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return cs, nil
}

func (s *SQLDatabase) CreateCandidate(ctx context.Context, c *ats.Candidate) error {
	c.Version = 1
	if err := s.queries.InsertCandidate(ctx, c); err != nil {
		c.Version = 0
		return fmt.Errorf("creating candidate: %w", classify(err))
	}
	return nil
}

// Interview operations

func (s *SQLDatabase) FindInterviewByID(ctx context.Context, id string) (*ats.Interview, error) {
	iv, err := s.queries.GetInterview(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding interview by id: %w", err)
	}
	return iv, nil
}

func (s *SQLDatabase) FindInterviewsByCandidate(ctx context.Context, candidateID string) ([]*ats.Interview, error) {
	ivs, err := s.queries.ListInterviewsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("finding interviews by candidate: %w", err)
	}
	return ivs, nil
}

func (s *SQLDatabase) ListInterviewsAfter(ctx context.Context, after *ats.Interview, limit int) ([]*ats.Interview, error) {
	ivs, err := s.queries.ListInterviewsAfter(ctx, after, limit)
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	return ivs, nil
}

// Commit applies the batch in a single transaction. Version-checked candidate
// writes that match no row roll the whole batch back with ErrConflict, or
// ErrNotFound when the candidate is gone.
func (s *SQLDatabase) Commit(ctx context.Context, batch *ats.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	for _, op := range batch.Ops() {
		if err := s.apply(ctx, qtx, op); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLDatabase) apply(ctx context.Context, qtx *Queries, op ats.BatchOp) error {
	switch op := op.(type) {
	case ats.PutInterview:
		if err := qtx.InsertInterview(ctx, op.Interview); err != nil {
			return fmt.Errorf("inserting interview %s: %w", op.Interview.ID, classify(err))
		}
	case ats.DeleteInterview:
		if err := qtx.DeleteInterview(ctx, op.ID); err != nil {
			return fmt.Errorf("deleting interview %s: %w", op.ID, err)
		}
	case ats.DeleteCandidateInterviews:
		if err := qtx.DeleteInterviewsByCandidate(ctx, op.CandidateID); err != nil {
			return fmt.Errorf("deleting interviews of %s: %w", op.CandidateID, err)
		}
	case ats.UpdateHistory:
		n, err := qtx.UpdateCandidateHistory(ctx, op)
		if err != nil {
			return fmt.Errorf("updating history of %s: %w", op.CandidateID, err)
		}
		if n == 0 {
			return versionMismatch(ctx, qtx, op.CandidateID, op.ExpectedVersion)
		}
	case ats.UpdateProfile:
		n, err := qtx.UpdateCandidateProfile(ctx, op)
		if err != nil {
			return fmt.Errorf("updating profile of %s: %w", op.CandidateID, err)
		}
		if n == 0 {
			return versionMismatch(ctx, qtx, op.CandidateID, op.ExpectedVersion)
		}
	case ats.RemoveCandidate:
		n, err := qtx.DeleteCandidate(ctx, op.CandidateID, op.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("deleting candidate %s: %w", op.CandidateID, classify(err))
		}
		if n == 0 {
			return versionMismatch(ctx, qtx, op.CandidateID, op.ExpectedVersion)
		}
	default:
		return fmt.Errorf("unsupported batch operation %T", op)
	}
	return nil
}

// versionMismatch explains why a version-checked write matched no row.
func versionMismatch(ctx context.Context, qtx *Queries, candidateID string, expected int64) error {
	current, err := qtx.GetCandidateVersion(ctx, candidateID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("candidate %s: %w", candidateID, ats.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading version of %s: %w", candidateID, err)
	}
	return fmt.Errorf("candidate %s is at version %d, expected %d: %w", candidateID, current, expected, ats.ErrConflict)
}

// Reference data

func (s *SQLDatabase) CreateJobPosition(ctx context.Context, p *ats.JobPosition) error {
	if err := s.queries.InsertJobPosition(ctx, p); err != nil {
		return fmt.Errorf("creating job position: %w", classify(err))
	}
	return nil
}

func (s *SQLDatabase) ListJobPositions(ctx context.Context) ([]*ats.JobPosition, error) {
	ps, err := s.queries.ListJobPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing job positions: %w", err)
	}
	return ps, nil
}

func (s *SQLDatabase) CreateInterviewer(ctx context.Context, i *ats.Interviewer) error {
	if err := s.queries.InsertInterviewer(ctx, i); err != nil {
		return fmt.Errorf("creating interviewer: %w", classify(err))
	}
	return nil
}

func (s *SQLDatabase) FindInterviewerByID(ctx context.Context, id string) (*ats.Interviewer, error) {
	i, err := s.queries.GetInterviewer(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding interviewer by id: %w", err)
	}
	return i, nil
}

func (s *SQLDatabase) ListInterviewers(ctx context.Context) ([]*ats.Interviewer, error) {
	is, err := s.queries.ListInterviewers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing interviewers: %w", err)
	}
	return is, nil
}

// Operation tracking

func (s *SQLDatabase) CreateOperation(ctx context.Context, op *ats.Operation) (*ats.Operation, error) {
	created := *op
	if created.StartedAt.IsZero() {
		created.StartedAt = s.clock.Now()
	}
	if created.Status == "" {
		created.Status = "running"
	}
	id, err := s.queries.InsertOperation(ctx, &created)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	created.ID = id
	return &created, nil
}

func (s *SQLDatabase) FinishOperation(ctx context.Context, id int64, status string) error {
	n, err := s.queries.FinishOperation(ctx, id, s.clock.Now(), status)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing operation %d: %w", id, ats.ErrNotFound)
	}
	return nil
}

func (s *SQLDatabase) ListOperations(ctx context.Context, limit int) ([]*ats.Operation, error) {
	ops, err := s.queries.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path (or ":memory:" for in-memory
// databases). It is empty for PostgreSQL.
func (s *SQLDatabase) Path() string {
	return s.path
}

// Dialect reports which SQL engine backs the database.
func (s *SQLDatabase) Dialect() Dialect {
	return s.dialect
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db, s.dialect.Name)
}

// MigrateUp applies pending migrations.
func (s *SQLDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db, s.dialect.Name)
}

// BackupTo creates a complete copy of a SQLite database at destPath using
// VACUUM INTO. PostgreSQL databases are backed up with their own tooling.
func (s *SQLDatabase) BackupTo(ctx context.Context, destPath string) error {
	if s.dialect.Name != SQLiteDialect.Name {
		return fmt.Errorf("snapshots are only supported for sqlite, not %s", s.dialect.Name)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// classify marks unique and foreign key violations as validation failures
// so callers can tell bad input from a broken database.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %w", ats.ErrValidation, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%w: %w", ats.ErrValidation, err)
	}
	return err
}

// Compile-time check that SQLDatabase implements ats.Database interface
var _ ats.Database = (*SQLDatabase)(nil)
