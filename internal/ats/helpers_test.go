package ats_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ats-go/internal/ats"
	"ats-go/internal/testutil"
)

func candidateInput(govID string) ats.CandidateInput {
	return ats.CandidateInput{
		Name:         "Ana Souza",
		GovernmentID: govID,
		Email:        "ana.souza@example.com",
		Phone:        "+55 11 91234-5678",
		JobPosition:  "Backend Developer",
		Description:  "Five years of Go.",
	}
}

func mustCreateCandidate(t *testing.T, f *testutil.ServiceFixture, govID string, docs ...ats.Document) *ats.Candidate {
	t.Helper()
	c, err := f.Service.CreateCandidate(context.Background(), candidateInput(govID), docs)
	if err != nil {
		t.Fatalf("CreateCandidate() error = %v", err)
	}
	return c
}

func mustAddInterviewer(t *testing.T, f *testutil.ServiceFixture, name string) *ats.Interviewer {
	t.Helper()
	i, err := f.Service.AddInterviewer(context.Background(), name)
	if err != nil {
		t.Fatalf("AddInterviewer() error = %v", err)
	}
	return i
}

func mustSchedule(t *testing.T, f *testutil.ServiceFixture, candidateID, interviewerID string) *ats.Interview {
	t.Helper()
	_, iv, err := f.Service.ScheduleInterview(context.Background(), candidateID, ats.InterviewRequest{
		InterviewerID: interviewerID,
		Type:          ats.InterviewOnline,
		Date:          f.Clock.Now().Add(48 * time.Hour),
		Notes:         "Bring portfolio.",
	})
	if err != nil {
		t.Fatalf("ScheduleInterview() error = %v", err)
	}
	return iv
}

func pendingDoc(name string) ats.PendingDocument {
	return ats.PendingDocument{
		Type:     ats.DocumentResume,
		FileName: name,
		Content:  []byte(fmt.Sprintf("contents of %s", name)),
	}
}
