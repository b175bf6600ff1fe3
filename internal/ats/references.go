package ats

import (
	"context"
	"fmt"
	"strings"
)

// AddJobPosition registers a job position. Names are unique ignoring case.
func (s *Service) AddJobPosition(ctx context.Context, name string) (*JobPosition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: job position name is required", ErrValidation)
	}

	existing, err := s.ListJobPositions(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("%w: job position %q already exists", ErrValidation, p.Name)
		}
	}

	p := &JobPosition{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedBy: auditActor(ctx, s.identity),
		CreatedAt: s.clock.Now(),
	}
	if err := s.database.CreateJobPosition(ctx, p); err != nil {
		return nil, storeError("creating job position", err)
	}
	s.logger.Info("job position added", "id", p.ID, "name", p.Name)
	return p, nil
}

// ListJobPositions returns job positions ordered by name.
func (s *Service) ListJobPositions(ctx context.Context) ([]*JobPosition, error) {
	ps, err := s.database.ListJobPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing job positions: %w", ErrPersistence, err)
	}
	return ps, nil
}

// AddInterviewer registers an interviewer. Names are unique ignoring case.
func (s *Service) AddInterviewer(ctx context.Context, name string) (*Interviewer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: interviewer name is required", ErrValidation)
	}

	existing, err := s.ListInterviewers(ctx)
	if err != nil {
		return nil, err
	}
	for _, i := range existing {
		if strings.EqualFold(i.Name, name) {
			return nil, fmt.Errorf("%w: interviewer %q already exists", ErrValidation, i.Name)
		}
	}

	i := &Interviewer{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedBy: auditActor(ctx, s.identity),
		CreatedAt: s.clock.Now(),
	}
	if err := s.database.CreateInterviewer(ctx, i); err != nil {
		return nil, storeError("creating interviewer", err)
	}
	s.logger.Info("interviewer added", "id", i.ID, "name", i.Name)
	return i, nil
}

// ListInterviewers returns interviewers ordered by name.
func (s *Service) ListInterviewers(ctx context.Context) ([]*Interviewer, error) {
	is, err := s.database.ListInterviewers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing interviewers: %w", ErrPersistence, err)
	}
	return is, nil
}

// GetInterviewer returns an interviewer, or ErrNotFound.
func (s *Service) GetInterviewer(ctx context.Context, id string) (*Interviewer, error) {
	i, err := s.database.FindInterviewerByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: finding interviewer: %w", ErrPersistence, err)
	}
	if i == nil {
		return nil, fmt.Errorf("%w: interviewer %s", ErrNotFound, id)
	}
	return i, nil
}
