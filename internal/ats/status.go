package ats

import (
	"fmt"
	"strings"
)

// Status is a stage of the hiring pipeline.
type Status string

const (
	StatusScreening     Status = "Screening"
	StatusInterview     Status = "Interview"
	StatusTechnicalTest Status = "TechnicalTest"
	StatusOffer         Status = "Offer"
	StatusHired         Status = "Hired"
	StatusRejected      Status = "Rejected"
)

// PipelineOrder lists every status in board order.
var PipelineOrder = []Status{
	StatusScreening,
	StatusInterview,
	StatusTechnicalTest,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

// Valid reports whether s is one of the pipeline statuses.
func (s Status) Valid() bool {
	for _, known := range PipelineOrder {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts the canonical name in any case, with or without
// separators ("technical-test", "Technical Test", "TECHNICALTEST").
func ParseStatus(raw string) (Status, error) {
	key := normalizeEnum(raw)
	for _, s := range PipelineOrder {
		if normalizeEnum(string(s)) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
}

// InterviewType is how an interview is held.
type InterviewType string

const (
	InterviewOnline   InterviewType = "Online"
	InterviewInPerson InterviewType = "InPerson"
)

func (t InterviewType) Valid() bool {
	return t == InterviewOnline || t == InterviewInPerson
}

// ParseInterviewType accepts "online", "in-person", "InPerson" and similar.
func ParseInterviewType(raw string) (InterviewType, error) {
	switch normalizeEnum(raw) {
	case "online":
		return InterviewOnline, nil
	case "inperson":
		return InterviewInPerson, nil
	}
	return "", fmt.Errorf("%w: unknown interview type %q", ErrValidation, raw)
}

// DocumentType classifies an attached document.
type DocumentType string

const (
	DocumentLicense  DocumentType = "license"
	DocumentWorkCard DocumentType = "work-card"
	DocumentResume   DocumentType = "resume"
	DocumentOther    DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentLicense, DocumentWorkCard, DocumentResume, DocumentOther:
		return true
	}
	return false
}

// ParseDocumentType accepts the canonical names in any case.
func ParseDocumentType(raw string) (DocumentType, error) {
	key := normalizeEnum(raw)
	for _, t := range []DocumentType{DocumentLicense, DocumentWorkCard, DocumentResume, DocumentOther} {
		if normalizeEnum(string(t)) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown document type %q", ErrValidation, raw)
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
