package ats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
)

// RegistrationNote is the notes text of a candidate's first history entry.
const RegistrationNote = "Candidate registered in the system."

// CandidateInput is the editable profile of a candidate.
type CandidateInput struct {
	Name         string `validate:"required,min=2"`
	GovernmentID string `validate:"required"`
	Email        string `validate:"required,email"`
	Phone        string `validate:"required,min=10"`
	JobPosition  string `validate:"required"`
	Description  string
}

func (in CandidateInput) trimmed() CandidateInput {
	return CandidateInput{
		Name:         strings.TrimSpace(in.Name),
		GovernmentID: strings.TrimSpace(in.GovernmentID),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		JobPosition:  strings.TrimSpace(in.JobPosition),
		Description:  strings.TrimSpace(in.Description),
	}
}

// CreateCandidate registers a candidate in Screening. Pending documents are
// uploaded before the record is written.
func (s *Service) CreateCandidate(ctx context.Context, in CandidateInput, docs []Document) (*Candidate, error) {
	in = in.trimmed()
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if s.govIDPattern != nil && !s.govIDPattern.MatchString(in.GovernmentID) {
		return nil, fmt.Errorf("%w: government ID %q does not match %s", ErrValidation, in.GovernmentID, s.govIDPattern)
	}

	existing, err := s.database.FindCandidateByGovernmentID(ctx, in.GovernmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: checking government ID: %w", ErrPersistence, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a candidate with government ID %s already exists", ErrValidation, in.GovernmentID)
	}

	id := s.idgen.New()
	stored, uploaded, err := s.storeDocuments(ctx, id, docs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &Candidate{
		ID:           id,
		Name:         in.Name,
		GovernmentID: in.GovernmentID,
		Email:        in.Email,
		Phone:        in.Phone,
		JobPosition:  in.JobPosition,
		Description:  in.Description,
		Documents:    stored,
		CreatedBy:    auditActor(ctx, s.identity),
	}
	c.AppendStatus(StatusEntry{
		Status: StatusScreening,
		Date:   now,
		Notes:  RegistrationNote,
		Actor:  actorLabel(ctx, s.identity),
	})
	c.LastUpdatedBy = c.CreatedBy

	if err := s.database.CreateCandidate(ctx, c); err != nil {
		s.discardDocuments(ctx, uploaded)
		return nil, storeError("creating candidate", err)
	}

	s.logger.Info("candidate created", "candidate", id, "documents", len(stored))
	return c, nil
}

// UpdateCandidate replaces the profile of a candidate and appends docs to its
// documents. The government ID cannot change and is ignored.
func (s *Service) UpdateCandidate(ctx context.Context, id string, in CandidateInput, docs []Document) (*Candidate, error) {
	in = in.trimmed()
	if err := s.validate.StructExcept(in, "GovernmentID"); err != nil {
		return nil, validationError(err)
	}

	stored, uploaded, err := s.storeDocuments(ctx, id, docs)
	if err != nil {
		return nil, err
	}

	c, err := s.mutateCandidate(ctx, id, func(c *Candidate) (*Batch, error) {
		c.Name = in.Name
		c.Email = in.Email
		c.Phone = in.Phone
		c.JobPosition = in.JobPosition
		c.Description = in.Description
		c.Documents = appendNewDocuments(c.Documents, stored)
		c.LastUpdate = s.clock.Now()
		c.LastUpdatedBy = auditActor(ctx, s.identity)
		return NewBatch().UpdateProfile(c), nil
	})
	if err != nil {
		s.discardDocuments(ctx, uploaded)
		return nil, fmt.Errorf("updating candidate %s: %w", id, err)
	}

	s.logger.Info("candidate updated", "candidate", id, "documents", len(stored))
	return c, nil
}

// GetCandidate returns a candidate, or ErrNotFound.
func (s *Service) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	return s.loadCandidate(ctx, id)
}

// ListCandidates returns every candidate, most recently updated first.
func (s *Service) ListCandidates(ctx context.Context) ([]*Candidate, error) {
	cs, err := s.database.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing candidates: %w", ErrPersistence, err)
	}
	return cs, nil
}

// SearchCandidates filters ListCandidates by term. Name and job position
// match case-insensitively, the government ID by substring. An empty term
// matches everyone.
func (s *Service) SearchCandidates(ctx context.Context, term string) ([]*Candidate, error) {
	cs, err := s.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCandidates(cs, term), nil
}

// FilterCandidates keeps the candidates matching term, preserving order.
func FilterCandidates(cs []*Candidate, term string) []*Candidate {
	term = strings.TrimSpace(term)
	if term == "" {
		return cs
	}
	lower := strings.ToLower(term)
	var out []*Candidate
	for _, c := range cs {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.JobPosition), lower) ||
			strings.Contains(c.GovernmentID, term) {
			out = append(out, c)
		}
	}
	return out
}

// OpenDocument writes the document at index of a candidate to w. Encrypted
// documents need dc; plaintext ones ignore it.
func (s *Service) OpenDocument(ctx context.Context, candidateID string, index int, w io.Writer, dc DecryptionContext) (StoredDocument, error) {
	c, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return StoredDocument{}, err
	}
	if index < 0 || index >= len(c.Documents) {
		return StoredDocument{}, fmt.Errorf("%w: candidate %s has no document %d", ErrNotFound, candidateID, index)
	}
	doc := c.Documents[index]

	if !doc.Encrypted {
		if err := s.store.Get(ctx, doc.Locator, w); err != nil {
			return doc, objectError("reading "+doc.FileName, err)
		}
		return doc, nil
	}

	if dc == nil {
		return doc, fmt.Errorf("%w: %s is encrypted, unlock the key first", ErrValidation, doc.FileName)
	}
	var buf bytes.Buffer
	if err := s.store.Get(ctx, doc.Locator, &buf); err != nil {
		return doc, objectError("reading "+doc.FileName, err)
	}
	if err := dc.Decrypt(&buf, w); err != nil {
		return doc, fmt.Errorf("decrypting %s: %w", doc.FileName, err)
	}
	return doc, nil
}

// storeDocuments uploads pending documents and passes stored ones through.
// uploaded lists only the objects written by this call, so a failed record
// write can remove them again.
func (s *Service) storeDocuments(ctx context.Context, candidateID string, docs []Document) (stored, uploaded []StoredDocument, err error) {
	stored = make([]StoredDocument, 0, len(docs))
	for _, d := range docs {
		switch doc := d.(type) {
		case StoredDocument:
			stored = append(stored, doc)
		case PendingDocument:
			sd, err := s.uploadDocument(ctx, candidateID, doc)
			if err != nil {
				s.discardDocuments(ctx, uploaded)
				return nil, nil, err
			}
			stored = append(stored, sd)
			uploaded = append(uploaded, sd)
		default:
			s.discardDocuments(ctx, uploaded)
			return nil, nil, fmt.Errorf("%w: unsupported document %T", ErrValidation, d)
		}
	}
	return stored, uploaded, nil
}

func (s *Service) uploadDocument(ctx context.Context, candidateID string, doc PendingDocument) (StoredDocument, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(doc.FileName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return StoredDocument{}, fmt.Errorf("%w: document file name is required", ErrValidation)
	}
	if !doc.Type.Valid() {
		return StoredDocument{}, fmt.Errorf("%w: unknown document type %q", ErrValidation, doc.Type)
	}

	content := doc.Content
	encrypted := false
	if s.encryptor != nil && s.encryptor.IsConfigured() {
		var buf bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(doc.Content), &buf); err != nil {
			return StoredDocument{}, fmt.Errorf("encrypting %s: %w", name, err)
		}
		content = buf.Bytes()
		encrypted = true
	}

	key := fmt.Sprintf("candidates/%s/%d_%s", candidateID, s.clock.Now().UnixNano(), name)
	locator, err := s.store.Put(ctx, key, bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return StoredDocument{}, objectError("uploading "+name, err)
	}

	s.logger.Debug("document stored", "candidate", candidateID, "locator", locator, "encrypted", encrypted)
	return StoredDocument{Type: doc.Type, FileName: name, Locator: locator, Encrypted: encrypted}, nil
}

// appendNewDocuments appends the documents whose locator is not attached yet.
func appendNewDocuments(existing, docs []StoredDocument) []StoredDocument {
	out := append([]StoredDocument(nil), existing...)
	for _, d := range docs {
		if !slices.ContainsFunc(out, func(e StoredDocument) bool { return e.Locator == d.Locator }) {
			out = append(out, d)
		}
	}
	return out
}

// discardDocuments removes uploads whose record was never written.
func (s *Service) discardDocuments(ctx context.Context, docs []StoredDocument) {
	for _, doc := range docs {
		if err := s.store.Delete(ctx, doc.Locator); err != nil && !errors.Is(err, ErrObjectNotFound) {
			s.logger.Warn("failed to remove orphaned document", "locator", doc.Locator, "error", err)
		}
	}
}

func objectError(action string, err error) error {
	if errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, action, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrObjectStore, action, err)
}
