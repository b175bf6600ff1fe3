package ats

import "time"

// StatusEntry records one status at one point in time. Entries are never
// edited once appended.
type StatusEntry struct {
	Status      Status    `json:"status"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	InterviewID string    `json:"interviewId,omitempty"`
	Actor       string    `json:"actor,omitempty"`
}

// Candidate is a person tracked through the hiring pipeline.
type Candidate struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	GovernmentID  string           `json:"governmentId"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	JobPosition   string           `json:"jobPosition"`
	Description   string           `json:"description,omitempty"`
	Documents     []StoredDocument `json:"documents"`
	StatusHistory History          `json:"statusHistory"`
	LastUpdate    time.Time        `json:"lastUpdate"`
	CreatedBy     string           `json:"createdBy,omitempty"`
	LastUpdatedBy string           `json:"lastUpdatedBy,omitempty"`

	// Version is bumped by every persisted write and checked on the next one.
	Version int64 `json:"version"`
}

// CurrentStatus returns the status of the latest history entry.
// A candidate with an empty history reports Screening.
func (c *Candidate) CurrentStatus() Status {
	latest, ok := c.StatusHistory.Latest()
	if !ok {
		return StatusScreening
	}
	return latest.Status
}

// AppendStatus adds entry to the history and moves LastUpdate to its date.
func (c *Candidate) AppendStatus(entry StatusEntry) {
	c.StatusHistory = c.StatusHistory.Append(entry)
	c.LastUpdate = entry.Date
}

// Interview is a scheduled meeting linked to one StatusEntry.
type Interview struct {
	ID              string        `json:"id"`
	CandidateID     string        `json:"candidateId"`
	CandidateName   string        `json:"candidateName"`
	InterviewerID   string        `json:"interviewerId"`
	InterviewerName string        `json:"interviewerName"`
	Type            InterviewType `json:"type"`
	Date            time.Time     `json:"date"`
	Notes           string        `json:"notes,omitempty"`
	Actor           string        `json:"actor,omitempty"`
}

// JobPosition is a named opening candidates apply for.
type JobPosition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interviewer is a person who runs interviews.
type Interviewer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Operation is an audit record of one mutating command or request.
type Operation struct {
	ID         int64      `json:"id"`
	Operation  string     `json:"operation"`
	Parameters string     `json:"parameters,omitempty"`
	Actor      string     `json:"actor,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     string     `json:"status"`
}
