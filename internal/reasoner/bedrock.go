// Package reasoner wraps the external reasoning service used by the deep
// escalation path. The engine only depends on the Complete contract; the
// Bedrock client here is the production implementation. Responses are free
// text and must always be treated as untrusted — callers parse defensively
// and fall back to their own computed results on anything malformed.
package reasoner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
)

// BedrockClient calls an Anthropic model through AWS Bedrock. All data stays
// within AWS - no external API calls. The client is injected into the
// escalator at construction time; there is no package-level instance.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
	tokens  int
}

type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockClient creates a Bedrock-backed reasoning client.
func NewBedrockClient(ctx context.Context, cfg config.ReasonerConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	c := &BedrockClient{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ModelID,
		region:  cfg.Region,
		tokens:  cfg.MaxTokens,
	}
	logger.Info("reasoner initialized", "model", c.modelID, "region", c.region)
	return c, nil
}

// Complete sends one prompt and returns the model's text response.
// Low temperature keeps escalation verdicts consistent across retries of
// the same batch.
func (c *BedrockClient) Complete(ctx context.Context, prompt string) (string, error) {
	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        c.tokens,
		Temperature:      0.3,
		Messages: []bedrockMessage{
			{Role: "user", Content: []bedrockContentBlock{{Type: "text", Text: prompt}}},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke model: %w", err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	logger.Debug("reasoner completion",
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"stop_reason", response.StopReason)
	return response.Content[0].Text, nil
}
