package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiExtractor implements ReceiptExtractor and StatementExtractor with Gemini.
type GeminiExtractor struct {
	client         *genai.Client
	statementModel string
	receiptModel   string
}

// NewGeminiExtractor creates a Gemini client. Empty model names fall back to
// DefaultStatementModel and DefaultReceiptModel; an empty apiKey lets the SDK
// read GEMINI_API_KEY / GOOGLE_API_KEY.
func NewGeminiExtractor(ctx context.Context, apiKey, statementModel, receiptModel string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}
	if statementModel == "" {
		statementModel = DefaultStatementModel
	}
	if receiptModel == "" {
		receiptModel = DefaultReceiptModel
	}
	return &GeminiExtractor{client: client, statementModel: statementModel, receiptModel: receiptModel}, nil
}

// candidateSchema is the response schema of a single record.
func candidateSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":        {Type: genai.TypeString},
			"amount":      {Type: genai.TypeNumber},
			"description": {Type: genai.TypeString},
			"category":    {Type: genai.TypeString},
			"type":        {Type: genai.TypeString},
		},
		Required: []string{"date", "amount", "description", "category", "type"},
	}
}

// ExtractStatement sends the raw text and expects a JSON array of records.
func (g *GeminiExtractor) ExtractStatement(ctx context.Context, text string) ([]Candidate, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: statementPrompt(text)}},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: candidateSchema(),
		},
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](statementThinkingBudget)},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.statementModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("ExtractStatement: generate content: %w", err)
	}

	parsed, err := decodeModelJSON(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("ExtractStatement: %w", err)
	}
	return DecodeCandidates(parsed)
}

// ExtractReceipt sends one encoded image and expects a single JSON object.
func (g *GeminiExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
				{Text: receiptPrompt()},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   candidateSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.receiptModel, contents, config)
	if err != nil {
		return Candidate{}, fmt.Errorf("ExtractReceipt: generate content: %w", err)
	}

	parsed, err := decodeModelJSON(resp.Text())
	if err != nil {
		return Candidate{}, fmt.Errorf("ExtractReceipt: %w", err)
	}
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return Candidate{}, fmt.Errorf("ExtractReceipt: model output is %T, want object", parsed)
	}
	return DecodeCandidate(obj), nil
}

func decodeModelJSON(rawText string) (interface{}, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return parsed, nil
}

// cleanModelJSON strips Markdown fences and any prose around the JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	openCh, closeCh := "[", "]"
	if first := strings.IndexAny(s, "[{"); first != -1 && s[first] == '{' {
		openCh, closeCh = "{", "}"
	}
	if start := strings.Index(s, openCh); start != -1 {
		if end := strings.LastIndex(s, closeCh); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
