package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// flowRecord is the per-candidate shape sent to the insight generator.
type flowRecord struct {
	ID            string  `json:"id"`
	StatusHistory History `json:"statusHistory"`
}

// FlowData serializes every candidate's ID and history as a JSON array.
func FlowData(candidates []*Candidate) (string, error) {
	records := make([]flowRecord, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, flowRecord{ID: c.ID, StatusHistory: c.StatusHistory})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding flow data: %w", err)
	}
	return string(data), nil
}

// AnalyzeFlow asks the insight generator to assess the hiring flow against a
// job profile.
func (s *Service) AnalyzeFlow(ctx context.Context, jobProfile string) (string, error) {
	jobProfile = strings.TrimSpace(jobProfile)
	if jobProfile == "" {
		return "", fmt.Errorf("%w: job profile is required", ErrValidation)
	}
	if s.insights == nil {
		return "", fmt.Errorf("%w: no insight generator configured", ErrOperationAborted)
	}

	cs, err := s.ListCandidates(ctx)
	if err != nil {
		return "", err
	}
	flow, err := FlowData(cs)
	if err != nil {
		return "", err
	}

	s.logger.Debug("requesting flow analysis", "candidates", len(cs))
	out, err := s.insights.Analyze(ctx, flow, jobProfile)
	if err != nil {
		return "", fmt.Errorf("%w: analyzing flow: %w", ErrOperationAborted, err)
	}
	return out, nil
}
