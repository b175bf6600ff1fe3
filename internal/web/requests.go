package web

import (
	"fmt"
	"time"

	"ats-go/internal/ats"
)

const (
	maxDocumentSize = 10 << 20 // 10MB per document
	maxBodySize     = 64 << 20
)

type documentUpload struct {
	Type     string `json:"type"`
	FileName string `json:"fileName"`
	Content  []byte `json:"content"` // base64 in JSON
}

type candidateRequest struct {
	Name         string           `json:"name"`
	GovernmentID string           `json:"governmentId"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	JobPosition  string           `json:"jobPosition"`
	Description  string           `json:"description"`
	Documents    []documentUpload `json:"documents"`
}

func (r candidateRequest) input() ats.CandidateInput {
	return ats.CandidateInput{
		Name:         r.Name,
		GovernmentID: r.GovernmentID,
		Email:        r.Email,
		Phone:        r.Phone,
		JobPosition:  r.JobPosition,
		Description:  r.Description,
	}
}

// documents converts uploads to pending documents.
func (r candidateRequest) documents() ([]ats.Document, error) {
	docs := make([]ats.Document, 0, len(r.Documents))
	for i, d := range r.Documents {
		typ, err := ats.ParseDocumentType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if len(d.Content) > maxDocumentSize {
			return nil, fmt.Errorf("%w: document %d exceeds %d bytes", ats.ErrValidation, i, maxDocumentSize)
		}
		docs = append(docs, ats.PendingDocument{Type: typ, FileName: d.FileName, Content: d.Content})
	}
	return docs, nil
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type interviewRequest struct {
	InterviewerID string    `json:"interviewerId"`
	Type          string    `json:"type"`
	Date          time.Time `json:"date"`
	Notes         string    `json:"notes"`
}

func (r interviewRequest) request() (ats.InterviewRequest, error) {
	typ, err := ats.ParseInterviewType(r.Type)
	if err != nil {
		return ats.InterviewRequest{}, err
	}
	return ats.InterviewRequest{
		InterviewerID: r.InterviewerID,
		Type:          typ,
		Date:          r.Date,
		Notes:         r.Notes,
	}, nil
}

type insightsRequest struct {
	JobProfile string `json:"jobProfile"`
}

type nameRequest struct {
	Name string `json:"name"`
}
