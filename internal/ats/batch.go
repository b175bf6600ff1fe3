package ats

import "time"

// Batch collects writes that must commit together. Database.Commit applies
// every operation in one transaction or none of them.
type Batch struct {
	ops []BatchOp
}

// BatchOp is one write inside a Batch. The concrete types below are the
// complete set a Database must handle.
type BatchOp interface {
	isBatchOp()
}

// PutInterview inserts a new interview record.
type PutInterview struct {
	Interview Interview
}

// DeleteInterview removes one interview. A missing ID is not an error.
type DeleteInterview struct {
	ID string
}

// DeleteCandidateInterviews removes every interview of a candidate.
type DeleteCandidateInterviews struct {
	CandidateID string
}

// UpdateHistory replaces a candidate's history and update stamps, provided
// the stored version still equals ExpectedVersion.
type UpdateHistory struct {
	CandidateID     string
	ExpectedVersion int64
	History         History
	LastUpdate      time.Time
	LastUpdatedBy   string
}

// UpdateProfile replaces a candidate's profile fields, documents and update
// stamps, provided the stored version still equals ExpectedVersion. The
// government ID and history are left alone.
type UpdateProfile struct {
	CandidateID     string
	ExpectedVersion int64
	Name            string
	Email           string
	Phone           string
	JobPosition     string
	Description     string
	Documents       []StoredDocument
	LastUpdate      time.Time
	LastUpdatedBy   string
}

// RemoveCandidate deletes a candidate record, provided the stored version
// still equals ExpectedVersion.
type RemoveCandidate struct {
	CandidateID     string
	ExpectedVersion int64
}

func (PutInterview) isBatchOp()              {}
func (DeleteInterview) isBatchOp()           {}
func (DeleteCandidateInterviews) isBatchOp() {}
func (UpdateHistory) isBatchOp()             {}
func (UpdateProfile) isBatchOp()             {}
func (RemoveCandidate) isBatchOp()           {}

// NewBatch returns an empty batch.
func NewBatch() *Batch { return &Batch{} }

// PutInterview queues an interview insert.
func (b *Batch) PutInterview(iv Interview) *Batch {
	b.ops = append(b.ops, PutInterview{Interview: iv})
	return b
}

// DeleteInterview queues an interview delete.
func (b *Batch) DeleteInterview(id string) *Batch {
	b.ops = append(b.ops, DeleteInterview{ID: id})
	return b
}

// DeleteCandidateInterviews queues a delete of all of a candidate's interviews.
func (b *Batch) DeleteCandidateInterviews(candidateID string) *Batch {
	b.ops = append(b.ops, DeleteCandidateInterviews{CandidateID: candidateID})
	return b
}

// UpdateHistory queues a version-checked history write for c. c.Version must
// be the version that was read.
func (b *Batch) UpdateHistory(c *Candidate) *Batch {
	b.ops = append(b.ops, UpdateHistory{
		CandidateID:     c.ID,
		ExpectedVersion: c.Version,
		History:         c.StatusHistory,
		LastUpdate:      c.LastUpdate,
		LastUpdatedBy:   c.LastUpdatedBy,
	})
	return b
}

// UpdateProfile queues a version-checked profile write for c.
func (b *Batch) UpdateProfile(c *Candidate) *Batch {
	b.ops = append(b.ops, UpdateProfile{
		CandidateID:     c.ID,
		ExpectedVersion: c.Version,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		JobPosition:     c.JobPosition,
		Description:     c.Description,
		Documents:       c.Documents,
		LastUpdate:      c.LastUpdate,
		LastUpdatedBy:   c.LastUpdatedBy,
	})
	return b
}

// RemoveCandidate queues a version-checked candidate delete.
func (b *Batch) RemoveCandidate(c *Candidate) *Batch {
	b.ops = append(b.ops, RemoveCandidate{CandidateID: c.ID, ExpectedVersion: c.Version})
	return b
}

// Ops returns the queued operations in order.
func (b *Batch) Ops() []BatchOp {
	return b.ops
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}
