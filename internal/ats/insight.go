package ats

import "context"

// InsightGenerator turns serialized candidate flow data and a job profile
// into free-text advice. It is an opaque external collaborator.
type InsightGenerator interface {
	Analyze(ctx context.Context, flowData string, jobProfile string) (string, error)
}
