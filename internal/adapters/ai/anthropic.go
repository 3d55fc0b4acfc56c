package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aurelius/mintbid/internal/domain/consignment"
)

const analysisPrompt = `You are a numismatic expert appraising an item submitted for consignment.
Using the photos and the description below, identify the item, assign a grade
on the Sheldon scale where applicable, and estimate a realistic auction value
range in US cents.

Respond with ONLY a JSON object in this exact shape:
{"identification": "...", "grade": "...", "valuation_low_cents": 0, "valuation_high_cents": 0, "notes": "..."}

Description:
%s`

// AnthropicAnalyzer implements consignment.Analyzer on the Anthropic
// Messages API with vision input.
type AnthropicAnalyzer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicAnalyzer creates a new analyzer. model selects the Anthropic
// model id used for analysis calls.
func NewAnthropicAnalyzer(apiKey, model string) *AnthropicAnalyzer {
	return &AnthropicAnalyzer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Analyze sends the submission photos and description for identification,
// grading, and valuation, and parses the structured response.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, images []string, text string) (*consignment.Analysis, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, imageURL := range images {
		blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{
			URL: imageURL,
		}))
	}
	blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf(analysisPrompt, text)))

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	var response strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	analysis, err := parseAnalysis(response.String())
	if err != nil {
		return nil, err
	}
	analysis.AnalyzedAt = time.Now()
	return analysis, nil
}

// parseAnalysis extracts the JSON object from the model response. The model
// occasionally wraps it in prose or a code fence.
func parseAnalysis(response string) (*consignment.Analysis, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in analysis response")
	}

	var analysis consignment.Analysis
	if err := json.Unmarshal([]byte(response[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if analysis.Identification == "" {
		return nil, fmt.Errorf("analysis response missing identification")
	}
	return &analysis, nil
}
