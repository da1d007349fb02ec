package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// TipsClient generates threat guidance using Amazon Bedrock
type TipsClient struct {
	client       *bedrockruntime.Client
	modelID      string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// tipsResponse represents the structured response from the model
type tipsResponse struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Tips     []string `json:"tips"`
	Severity string   `json:"severity"`
	Score    *int     `json:"score"`
}

// NewTipsClient creates a new Bedrock tips client
func NewTipsClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *TipsClient {
	return &TipsClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You are a cybersecurity assistant for a phishing-detection service named PhishLens.
Generate 5 short, practical, human-friendly security tips.

Rules:
Analyze the URL %s and base tips on its characteristics; look for anything suspicious. Don't mention the URL in your response.
Tailor tips to the threat category: %s
Make tips relevant to everyday users with varying tech skills.
Keep them beginner-friendly and action-based.
Avoid long paragraphs; keep tips crisp.
Output must be a single JSON object containing:
- title: string (short headline)
- summary: string (one-paragraph explanation)
- tips: array of strings
- severity: one of "low", "medium", "high", "critical"
- score: number between 0 and 100 (how risky the target looks)

Respond only with the JSON object and nothing else.`,
	}
}

// GenerateTips produces guidance for a risk category and target URL
func (c *TipsClient) GenerateTips(ctx context.Context, category core.RiskCategory, targetURL string) (*core.ThreatInfo, error) {
	prompt := fmt.Sprintf(c.promptFormat, targetURL, category)

	// Create the request based on the model
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		// Default to a generic format
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	// Parse the response based on the model
	var responseText string

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		responseText = claudeResp.Completion
	} else if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return nil, fmt.Errorf("empty response from Titan model")
		}
		responseText = titanResp.Results[0].OutputText
	} else {
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			responseText = genericResp.Output
		case genericResp.Text != "":
			responseText = genericResp.Text
		case genericResp.Response != "":
			responseText = genericResp.Response
		default:
			responseText = string(resp.Body)
		}
	}

	var tips tipsResponse
	if err := parseJSONResponse(responseText, &tips); err != nil {
		return nil, err
	}

	return &core.ThreatInfo{
		Title:       tips.Title,
		Explanation: tips.Summary,
		Tips:        tips.Tips,
		Severity:    tips.Severity,
		Score:       tips.Score,
	}, nil
}

// parseJSONResponse unmarshals the model output, scanning for an embedded
// JSON object when the model wrapped it in prose
func parseJSONResponse(responseText string, out interface{}) error {
	if err := json.Unmarshal([]byte(responseText), out); err == nil {
		return nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonStart >= jsonEnd {
		return fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), out); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *TipsClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *TipsClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
