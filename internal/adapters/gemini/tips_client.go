package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// TipsClient generates threat guidance using Google Gemini
type TipsClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
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

// NewTipsClient creates a new Gemini tips client
func NewTipsClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*TipsClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &TipsClient{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
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
	}, nil
}

// Close closes the Gemini client
func (c *TipsClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GenerateTips produces guidance for a risk category and target URL
func (c *TipsClient) GenerateTips(ctx context.Context, category core.RiskCategory, targetURL string) (*core.ThreatInfo, error) {
	prompt := fmt.Sprintf(c.promptFormat, targetURL, category)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

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
