// Package analyzer tags creatives with emotion, tone, colour and visual
// elements using a large language model hosted on AWS Bedrock.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/giannis84/ad-intelligence/internal/models"
)

const (
	anthropicVersion = "bedrock-2023-05-31"
	maxTokens        = 1024
)

var (
	ErrEmptyCreative = errors.New("creative has no content to analyze")
	ErrInvalidOutput = errors.New("model returned no usable analysis")
	// ErrModelUnavailable wraps transport and service failures from Bedrock.
	ErrModelUnavailable = errors.New("analysis model unavailable")
)

// modelInvoker is the subset of the Bedrock runtime client used here.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockAnalyzer sends one creative per request and parses the tag object
// out of the model's reply.
type BedrockAnalyzer struct {
	client  modelInvoker
	modelID string
}

// NewBedrockAnalyzer loads AWS credentials from the default chain.
func NewBedrockAnalyzer(ctx context.Context, region, modelID string) (*BedrockAnalyzer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newBedrockAnalyzer(bedrockruntime.NewFromConfig(cfg), modelID), nil
}

func newBedrockAnalyzer(client modelInvoker, modelID string) *BedrockAnalyzer {
	return &BedrockAnalyzer{client: client, modelID: modelID}
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type invokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
}

type invokeResponse struct {
	Content []contentBlock `json:"content"`
}

// tagResult is the JSON contract the model is asked to honour.
type tagResult struct {
	Emotion           string   `json:"emotion"`
	CopyTone          string   `json:"copy_tone"`
	PrimaryColor      string   `json:"primary_color"`
	VisualElements    []string `json:"visual_elements"`
	PerformanceDriver string   `json:"performance_driver"`
	Recommendations   []string `json:"recommendations"`
}

// Analyze returns an Analysis carrying only the tag fields. Identity fields
// are left for the caller to fill in.
func (a *BedrockAnalyzer) Analyze(ctx context.Context, creative *models.Creative) (*models.Analysis, error) {
	if creative == nil || !creative.HasContent() {
		return nil, ErrEmptyCreative
	}

	body, err := json.Marshal(invokeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		System:           systemPrompt,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: BuildPrompt(creative)}},
		}},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding bedrock request: %w", err)
	}

	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invoking bedrock model: %w", ErrModelUnavailable, err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding bedrock response: %w", ErrInvalidOutput, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ParseAnalysis(text.String())
}

// ParseAnalysis extracts the outermost JSON object from model output.
// Values are trimmed and empty list entries dropped. Tags outside the
// expected vocabularies are kept as-is.
func ParseAnalysis(output string) (*models.Analysis, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end <= start {
		return nil, ErrInvalidOutput
	}

	var tags tagResult
	if err := json.Unmarshal([]byte(output[start:end+1]), &tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	analysis := &models.Analysis{
		Emotion:           strings.TrimSpace(tags.Emotion),
		CopyTone:          strings.TrimSpace(tags.CopyTone),
		PrimaryColor:      strings.TrimSpace(tags.PrimaryColor),
		VisualElements:    cleanList(tags.VisualElements),
		PerformanceDriver: strings.TrimSpace(tags.PerformanceDriver),
		Recommendations:   cleanList(tags.Recommendations),
	}
	if analysis.Emotion == "" && analysis.CopyTone == "" && analysis.PrimaryColor == "" &&
		len(analysis.VisualElements) == 0 {
		return nil, ErrInvalidOutput
	}
	return analysis, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
