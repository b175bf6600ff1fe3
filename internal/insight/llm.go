// Package insight generates hiring-flow advice with a language model.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"ats-go/internal/ats"
)

// maxFlowDataLen caps the flow data sent to the model.
const maxFlowDataLen = 60000

const flowAnalysisPrompt = `You are an expert in analyzing candidate hiring data.
Your goal is to identify the optimal time to approach candidates with similar profiles for future hiring campaigns.
Analyze the following candidate flow data and provide insights on the best moment to engage candidates, maximizing the effectiveness of the hiring efforts.

### CANDIDATE FLOW DATA (JSON, one object per candidate with its status history):
%s

### JOB PROFILE:
%s

Provide clear, actionable insights that can be used to improve the timing and approach of future hiring campaigns for similar roles.
Answer in plain text.
`

// LLMGenerator implements ats.InsightGenerator on top of any langchaingo model.
type LLMGenerator struct {
	model       llms.Model
	temperature float64
}

var _ ats.InsightGenerator = (*LLMGenerator)(nil)

// NewLLMGenerator wraps model. temperature is passed on every call.
func NewLLMGenerator(model llms.Model, temperature float64) *LLMGenerator {
	return &LLMGenerator{model: model, temperature: temperature}
}

// Analyze asks the model for advice on the given flow data and job profile.
func (g *LLMGenerator) Analyze(ctx context.Context, flowData string, jobProfile string) (string, error) {
	if len(flowData) > maxFlowDataLen {
		flowData = flowData[:maxFlowDataLen]
	}
	prompt := BuildPrompt(flowData, jobProfile)

	resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", fmt.Errorf("generating insights: %w", err)
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return "", fmt.Errorf("generating insights: model returned an empty answer")
	}
	return resp, nil
}

// BuildPrompt renders the analysis prompt.
func BuildPrompt(flowData, jobProfile string) string {
	return fmt.Sprintf(flowAnalysisPrompt, flowData, strings.TrimSpace(jobProfile))
}
