package ats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// statusChange is validated before the candidate is read. The notes length
// counts the text as given, surrounding spaces included.
type statusChange struct {
	Status Status `validate:"required"`
	Notes  string `validate:"min=10"`
}

// Interview dates are stored as nanoseconds since the Unix epoch, which
// bounds the dates that can be scheduled. The lowest value is reserved.
var (
	EarliestInterviewDate = time.Unix(0, math.MinInt64+1).UTC()
	LatestInterviewDate   = time.Unix(0, math.MaxInt64).UTC()
)

// InterviewRequest describes an interview to schedule.
type InterviewRequest struct {
	InterviewerID string        `validate:"required"`
	Type          InterviewType `validate:"required,oneof=Online InPerson"`
	Date          time.Time     `validate:"required"`
	Notes         string
}

// ChangeStatus moves a candidate to newStatus and records notes in the
// history. Moving to Interview goes through ScheduleInterview instead. When
// the candidate leaves Interview its active interview is deleted in the same
// commit.
func (s *Service) ChangeStatus(ctx context.Context, candidateID string, newStatus Status, notes string) (*Candidate, error) {
	req := statusChange{Status: newStatus, Notes: notes}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	req.Notes = strings.TrimSpace(notes)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	if newStatus == StatusInterview {
		return nil, fmt.Errorf("%w: use interview scheduling to move a candidate to %s", ErrValidation, StatusInterview)
	}

	c, err := s.mutateCandidate(ctx, candidateID, func(c *Candidate) (*Batch, error) {
		if err := s.policy.Check(c.CurrentStatus(), newStatus); err != nil {
			return nil, err
		}
		prev, _ := c.StatusHistory.Latest()

		c.AppendStatus(StatusEntry{
			Status: newStatus,
			Date:   s.clock.Now(),
			Notes:  req.Notes,
			Actor:  actorLabel(ctx, s.identity),
		})
		c.LastUpdatedBy = auditActor(ctx, s.identity)

		batch := NewBatch()
		if prev.Status == StatusInterview && prev.InterviewID != "" {
			batch.DeleteInterview(prev.InterviewID)
		}
		return batch.UpdateHistory(c), nil
	})
	if err != nil {
		return nil, fmt.Errorf("changing status of %s: %w", candidateID, err)
	}

	s.logger.Info("status changed", "candidate", candidateID, "status", newStatus)
	return c, nil
}

// ScheduleInterview creates an interview and moves the candidate to
// Interview. The interview insert and the history entry linking to it commit
// together; a previously active interview is deleted in the same commit.
func (s *Service) ScheduleInterview(ctx context.Context, candidateID string, req InterviewRequest) (*Candidate, *Interview, error) {
	req.Notes = strings.TrimSpace(req.Notes)
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, validationError(err)
	}
	if req.Date.Before(EarliestInterviewDate) || req.Date.After(LatestInterviewDate) {
		return nil, nil, fmt.Errorf("%w: interview date %s is outside %s to %s", ErrValidation,
			req.Date.Format(time.RFC3339), EarliestInterviewDate.Format(time.DateOnly), LatestInterviewDate.Format(time.DateOnly))
	}

	interviewer, err := s.database.FindInterviewerByID(ctx, req.InterviewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: finding interviewer: %w", ErrPersistence, err)
	}
	if interviewer == nil {
		return nil, nil, fmt.Errorf("%w: interviewer %s", ErrNotFound, req.InterviewerID)
	}

	var scheduled Interview
	c, err := s.mutateCandidate(ctx, candidateID, func(c *Candidate) (*Batch, error) {
		if err := s.policy.Check(c.CurrentStatus(), StatusInterview); err != nil {
			return nil, err
		}
		prev, _ := c.StatusHistory.Latest()

		scheduled = Interview{
			ID:              s.idgen.New(),
			CandidateID:     c.ID,
			CandidateName:   c.Name,
			InterviewerID:   interviewer.ID,
			InterviewerName: interviewer.Name,
			Type:            req.Type,
			Date:            req.Date,
			Notes:           req.Notes,
			Actor:           actorLabel(ctx, s.identity),
		}
		c.AppendStatus(StatusEntry{
			Status:      StatusInterview,
			Date:        s.clock.Now(),
			Notes:       s.scheduledNote(scheduled),
			InterviewID: scheduled.ID,
			Actor:       scheduled.Actor,
		})
		c.LastUpdatedBy = auditActor(ctx, s.identity)

		batch := NewBatch()
		if prev.Status == StatusInterview && prev.InterviewID != "" {
			batch.DeleteInterview(prev.InterviewID)
		}
		return batch.UpdateHistory(c).PutInterview(scheduled), nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scheduling interview for %s: %w", candidateID, err)
	}

	s.logger.Info("interview scheduled", "candidate", candidateID, "interview", scheduled.ID, "date", scheduled.Date)
	return c, &scheduled, nil
}

// CancelInterview deletes an interview and returns its candidate to
// Screening. Cancellation is a rollback and is not subject to the transition
// policy.
func (s *Service) CancelInterview(ctx context.Context, interviewID string) (*Candidate, error) {
	iv, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("cancelling interview: %w", err)
	}

	reread := false
	c, err := s.mutateCandidate(ctx, iv.CandidateID, func(c *Candidate) (*Batch, error) {
		if reread {
			// A concurrent write may already have removed the interview.
			if _, err := s.interviews.Get(ctx, interviewID); err != nil {
				return nil, err
			}
		}
		reread = true

		c.AppendStatus(StatusEntry{
			Status: StatusScreening,
			Date:   s.clock.Now(),
			Notes:  fmt.Sprintf("Interview of %s cancelled.", s.formatDate(iv.Date)),
			Actor:  actorLabel(ctx, s.identity),
		})
		c.LastUpdatedBy = auditActor(ctx, s.identity)

		return NewBatch().DeleteInterview(iv.ID).UpdateHistory(c), nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancelling interview %s: %w", interviewID, err)
	}

	s.logger.Info("interview cancelled", "candidate", iv.CandidateID, "interview", interviewID)
	return c, nil
}

// DeleteCandidate removes a candidate, its interviews and its stored
// documents. Documents are deleted first; a document that is already gone is
// skipped, any other object store failure aborts before the records are
// touched.
func (s *Service) DeleteCandidate(ctx context.Context, candidateID string) error {
	_, err := s.mutateCandidate(ctx, candidateID, func(c *Candidate) (*Batch, error) {
		if err := s.deleteDocuments(ctx, c.Documents); err != nil {
			return nil, err
		}
		return NewBatch().DeleteCandidateInterviews(c.ID).RemoveCandidate(c), nil
	})
	if err != nil {
		return fmt.Errorf("deleting candidate %s: %w", candidateID, err)
	}

	s.logger.Info("candidate deleted", "candidate", candidateID)
	return nil
}

// deleteDocuments removes stored documents in parallel.
func (s *Service) deleteDocuments(ctx context.Context, docs []StoredDocument) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range docs {
		g.Go(func() error {
			err := s.store.Delete(gctx, doc.Locator)
			if err == nil || errors.Is(err, ErrObjectNotFound) {
				return nil
			}
			return fmt.Errorf("%w: deleting %s: %w", ErrObjectStore, doc.FileName, err)
		})
	}
	return g.Wait()
}

func (s *Service) scheduledNote(iv Interview) string {
	note := fmt.Sprintf("Interview (%s) scheduled with %s for %s. %s",
		iv.Type, iv.InterviewerName, s.formatDate(iv.Date), iv.Notes)
	return strings.TrimSpace(note)
}

func (s *Service) formatDate(t time.Time) string {
	return t.In(s.location).Format(noteDateLayout)
}
