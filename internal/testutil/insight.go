package testutil

import (
	"context"
	"sync"

	"ats-go/internal/ats"
)

// StubInsightGenerator returns a canned answer and records its inputs.
type StubInsightGenerator struct {
	Answer string
	Err    error

	mu         sync.Mutex
	Calls      int
	FlowData   string
	JobProfile string
}

var _ ats.InsightGenerator = (*StubInsightGenerator)(nil)

func (g *StubInsightGenerator) Analyze(_ context.Context, flowData string, jobProfile string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	g.FlowData = flowData
	g.JobProfile = jobProfile
	if g.Err != nil {
		return "", g.Err
	}
	return g.Answer, nil
}
