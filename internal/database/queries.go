package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ats-go/internal/ats"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements shared by all dialects. Statements are
// written with ? placeholders and rebound for dialects that number them.
type Queries struct {
	db      DBTX
	dialect Dialect
}

// NewQueries binds the statements to db.
func NewQueries(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// WithTx returns a copy of q that runs inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// Dialect describes the differences between supported SQL engines.
type Dialect struct {
	// Name is the database/sql driver name, also used to pick migrations.
	Name string

	// Numbered is set when placeholders are $1, $2, ... instead of ?.
	Numbered bool
}

var (
	SQLiteDialect   = Dialect{Name: "sqlite3"}
	PostgresDialect = Dialect{Name: "postgres", Numbered: true}
)

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Candidates

const candidateColumns = `id, name, government_id, email, phone, job_position, description,
	documents, status_history, last_update, created_by, last_updated_by, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*ats.Candidate, error) {
	var c ats.Candidate
	var documents, history string
	var lastUpdate int64
	err := row.Scan(&c.ID, &c.Name, &c.GovernmentID, &c.Email, &c.Phone, &c.JobPosition, &c.Description,
		&documents, &history, &lastUpdate, &c.CreatedBy, &c.LastUpdatedBy, &c.Version)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(documents), &c.Documents); err != nil {
		return nil, fmt.Errorf("decoding documents of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(history), &c.StatusHistory); err != nil {
		return nil, fmt.Errorf("decoding status history of %s: %w", c.ID, err)
	}
	c.LastUpdate = fromUnixNano(lastUpdate)
	return &c, nil
}

func (q *Queries) GetCandidate(ctx context.Context, id string) (*ats.Candidate, error) {
	row := q.queryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	return scanCandidate(row)
}

func (q *Queries) GetCandidateByGovernmentID(ctx context.Context, governmentID string) (*ats.Candidate, error) {
	row := q.queryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE government_id = ?`, governmentID)
	return scanCandidate(row)
}

func (q *Queries) GetCandidateVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := q.queryRow(ctx, `SELECT version FROM candidates WHERE id = ?`, id).Scan(&version)
	return version, err
}

func (q *Queries) ListCandidates(ctx context.Context) ([]*ats.Candidate, error) {
	rows, err := q.query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY last_update DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) InsertCandidate(ctx context.Context, c *ats.Candidate) error {
	documents, history, err := encodeCandidateJSON(c.Documents, c.StatusHistory)
	if err != nil {
		return err
	}
	_, err = q.exec(ctx, `INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.GovernmentID, c.Email, c.Phone, c.JobPosition, c.Description,
		documents, history, toUnixNano(c.LastUpdate), c.CreatedBy, c.LastUpdatedBy, c.Version)
	return err
}

// UpdateCandidateHistory returns the number of rows changed, zero when the
// version did not match.
func (q *Queries) UpdateCandidateHistory(ctx context.Context, op ats.UpdateHistory) (int64, error) {
	history, err := json.Marshal(nonNilHistory(op.History))
	if err != nil {
		return 0, fmt.Errorf("encoding status history: %w", err)
	}
	res, err := q.exec(ctx, `UPDATE candidates
		SET status_history = ?, last_update = ?, last_updated_by = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		string(history), toUnixNano(op.LastUpdate), op.LastUpdatedBy, op.CandidateID, op.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateCandidateProfile returns the number of rows changed, zero when the
// version did not match.
func (q *Queries) UpdateCandidateProfile(ctx context.Context, op ats.UpdateProfile) (int64, error) {
	documents, err := json.Marshal(nonNilDocuments(op.Documents))
	if err != nil {
		return 0, fmt.Errorf("encoding documents: %w", err)
	}
	res, err := q.exec(ctx, `UPDATE candidates
		SET name = ?, email = ?, phone = ?, job_position = ?, description = ?, documents = ?,
			last_update = ?, last_updated_by = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		op.Name, op.Email, op.Phone, op.JobPosition, op.Description, string(documents),
		toUnixNano(op.LastUpdate), op.LastUpdatedBy, op.CandidateID, op.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteCandidate(ctx context.Context, id string, expectedVersion int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM candidates WHERE id = ? AND version = ?`, id, expectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Interviews

const interviewColumns = `id, candidate_id, candidate_name, interviewer_id, interviewer_name, type, date, notes, actor`

func scanInterview(row rowScanner) (*ats.Interview, error) {
	var iv ats.Interview
	var date int64
	err := row.Scan(&iv.ID, &iv.CandidateID, &iv.CandidateName, &iv.InterviewerID, &iv.InterviewerName,
		&iv.Type, &date, &iv.Notes, &iv.Actor)
	if err != nil {
		return nil, err
	}
	iv.Date = fromUnixNano(date)
	return &iv, nil
}

func scanInterviews(rows *sql.Rows) ([]*ats.Interview, error) {
	defer rows.Close()
	var out []*ats.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (q *Queries) InsertInterview(ctx context.Context, iv ats.Interview) error {
	_, err := q.exec(ctx, `INSERT INTO interviews (`+interviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.CandidateID, iv.CandidateName, iv.InterviewerID, iv.InterviewerName,
		string(iv.Type), toUnixNano(iv.Date), iv.Notes, iv.Actor)
	return err
}

func (q *Queries) GetInterview(ctx context.Context, id string) (*ats.Interview, error) {
	return scanInterview(q.queryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id))
}

func (q *Queries) ListInterviewsByCandidate(ctx context.Context, candidateID string) ([]*ats.Interview, error) {
	rows, err := q.query(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE candidate_id = ? ORDER BY date, id`, candidateID)
	if err != nil {
		return nil, err
	}
	return scanInterviews(rows)
}

func (q *Queries) ListInterviewsAfter(ctx context.Context, after *ats.Interview, limit int) ([]*ats.Interview, error) {
	var rows *sql.Rows
	var err error
	if after == nil {
		rows, err = q.query(ctx, `SELECT `+interviewColumns+` FROM interviews
			ORDER BY date, id LIMIT ?`, limit)
	} else {
		date := toUnixNano(after.Date)
		rows, err = q.query(ctx, `SELECT `+interviewColumns+` FROM interviews
			WHERE date > ? OR (date = ? AND id > ?)
			ORDER BY date, id LIMIT ?`, date, date, after.ID, limit)
	}
	if err != nil {
		return nil, err
	}
	return scanInterviews(rows)
}

func (q *Queries) DeleteInterview(ctx context.Context, id string) error {
	_, err := q.exec(ctx, `DELETE FROM interviews WHERE id = ?`, id)
	return err
}

func (q *Queries) DeleteInterviewsByCandidate(ctx context.Context, candidateID string) error {
	_, err := q.exec(ctx, `DELETE FROM interviews WHERE candidate_id = ?`, candidateID)
	return err
}

// Reference data

func (q *Queries) InsertJobPosition(ctx context.Context, p *ats.JobPosition) error {
	_, err := q.exec(ctx, `INSERT INTO job_positions (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.CreatedBy, toUnixNano(p.CreatedAt))
	return err
}

func (q *Queries) ListJobPositions(ctx context.Context) ([]*ats.JobPosition, error) {
	rows, err := q.query(ctx, `SELECT id, name, created_by, created_at FROM job_positions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.JobPosition
	for rows.Next() {
		var p ats.JobPosition
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = fromUnixNano(createdAt)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (q *Queries) InsertInterviewer(ctx context.Context, i *ats.Interviewer) error {
	_, err := q.exec(ctx, `INSERT INTO interviewers (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		i.ID, i.Name, i.CreatedBy, toUnixNano(i.CreatedAt))
	return err
}

func scanInterviewer(row rowScanner) (*ats.Interviewer, error) {
	var i ats.Interviewer
	var createdAt int64
	if err := row.Scan(&i.ID, &i.Name, &i.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	i.CreatedAt = fromUnixNano(createdAt)
	return &i, nil
}

func (q *Queries) GetInterviewer(ctx context.Context, id string) (*ats.Interviewer, error) {
	return scanInterviewer(q.queryRow(ctx, `SELECT id, name, created_by, created_at FROM interviewers WHERE id = ?`, id))
}

func (q *Queries) ListInterviewers(ctx context.Context) ([]*ats.Interviewer, error) {
	rows, err := q.query(ctx, `SELECT id, name, created_by, created_at FROM interviewers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Interviewer
	for rows.Next() {
		i, err := scanInterviewer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Operations

func (q *Queries) InsertOperation(ctx context.Context, op *ats.Operation) (int64, error) {
	var id int64
	err := q.queryRow(ctx, `INSERT INTO operations (operation, parameters, actor, started_at, status)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		op.Operation, op.Parameters, op.Actor, toUnixNano(op.StartedAt), op.Status).Scan(&id)
	return id, err
}

func (q *Queries) FinishOperation(ctx context.Context, id int64, finishedAt time.Time, status string) (int64, error) {
	res, err := q.exec(ctx, `UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		toUnixNano(finishedAt), status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListOperations(ctx context.Context, limit int) ([]*ats.Operation, error) {
	rows, err := q.query(ctx, `SELECT id, operation, parameters, actor, started_at, finished_at, status
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ats.Operation
	for rows.Next() {
		var op ats.Operation
		var startedAt int64
		var finishedAt sql.NullInt64
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.Actor, &startedAt, &finishedAt, &op.Status); err != nil {
			return nil, err
		}
		op.StartedAt = fromUnixNano(startedAt)
		if finishedAt.Valid {
			t := fromUnixNano(finishedAt.Int64)
			op.FinishedAt = &t
		}
		out = append(out, &op)
	}
	return out, rows.Err()
}

// Encoding helpers

// zeroTime encodes the zero time.Time. It lies below every date the service
// accepts, so the epoch and other real dates keep their own value.
const zeroTime = math.MinInt64

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return zeroTime
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == zeroTime {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func encodeCandidateJSON(docs []ats.StoredDocument, history ats.History) (string, string, error) {
	d, err := json.Marshal(nonNilDocuments(docs))
	if err != nil {
		return "", "", fmt.Errorf("encoding documents: %w", err)
	}
	h, err := json.Marshal(nonNilHistory(history))
	if err != nil {
		return "", "", fmt.Errorf("encoding status history: %w", err)
	}
	return string(d), string(h), nil
}

func nonNilDocuments(docs []ats.StoredDocument) []ats.StoredDocument {
	if docs == nil {
		return []ats.StoredDocument{}
	}
	return docs
}

func nonNilHistory(h ats.History) ats.History {
	if h == nil {
		return ats.History{}
	}
	return h
}
