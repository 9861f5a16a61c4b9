// Package advisor answers free-text questions about the user's finances with
// Gemini and Google Search grounding.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

const (
	// DefaultModel is used when no advisor model is configured.
	DefaultModel = "gemini-2.5-flash"

	// FallbackAnswer replaces an empty model response.
	FallbackAnswer = "I'm sorry, I couldn't process that request."

	recentExpenseCount    = 10
	adviceTemperature     = 0.7
	simulationThinkBudget = 4000
)

// Request is the context of one question.
type Request struct {
	Transactions []domain.Transaction
	Summary      metrics.FinancialSummary
	Profile      domain.UserProfile
	Question     string
}

// Source is a web citation the answer was grounded on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Answer is passed through to the caller unchanged.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Gemini is the advisory capability.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. An empty model uses DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("advisor.NewGemini: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Ask answers req.Question with the user's context as system instruction.
func (g *Gemini) Ask(ctx context.Context, req Request) (Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return Answer{}, fmt.Errorf("Ask: empty question")
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction(req)}}},
		Temperature:       genai.Ptr[float32](adviceTemperature),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Question}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Answer{}, fmt.Errorf("Ask: generate content: %w", err)
	}
	return answerFrom(resp), nil
}

// Simulate runs a 10-year wealth trajectory for a free-text scenario.
func (g *Gemini) Simulate(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error) {
	prompt := fmt.Sprintf(
		"Perform a 10-year wealth trajectory simulation for: %q. Salary %s, Net Worth %s. "+
			"Use professional financial modeling logic and present a year-by-year table in Markdown.",
		scenario,
		domain.FormatAmount(profile.BaseSalary, profile.Currency),
		domain.FormatAmount(summary.NetWorth, profile.Currency),
	)
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](simulationThinkBudget)},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Simulate: generate content: %w", err)
	}
	if text := resp.Text(); text != "" {
		return text, nil
	}
	return "Simulation failed.", nil
}

func systemInstruction(req Request) string {
	expenses, _ := json.Marshal(recentExpenses(req.Transactions, recentExpenseCount))
	cur := req.Profile.Currency
	var b strings.Builder
	b.WriteString("You are a Helpful Financial Advisor AI.\n")
	b.WriteString("User Context:\n")
	fmt.Fprintf(&b, "- Base Monthly Salary: %s\n", domain.FormatAmount(req.Profile.BaseSalary, cur))
	fmt.Fprintf(&b, "- Current Net Worth: %s\n", domain.FormatAmount(req.Summary.NetWorth, cur))
	fmt.Fprintf(&b, "- Savings Rate: %.1f%%\n", req.Summary.SavingsRate*100)
	fmt.Fprintf(&b, "- Recent Expenses: %s\n\n", expenses)
	b.WriteString("Guidelines:\n")
	b.WriteString("1. Provide specific, actionable advice based on transaction history and current market conditions.\n")
	b.WriteString("2. Format using Markdown for clarity.\n")
	b.WriteString("3. You have access to Google Search. Use it to find the latest interest rates, inflation data, market trends, or tax laws.\n")
	return b.String()
}

// recentExpenses returns the last n expense transactions in ledger order.
func recentExpenses(txs []domain.Transaction, n int) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txs {
		if tx.Type == domain.TypeExpense {
			out = append(out, tx)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func answerFrom(resp *genai.GenerateContentResponse) Answer {
	a := Answer{Text: resp.Text()}
	if a.Text == "" {
		a.Text = FallbackAnswer
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return a
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		a.Sources = append(a.Sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return a
}
