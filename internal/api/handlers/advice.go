package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

// Advisor answers questions and runs wealth simulations.
type Advisor interface {
	Ask(ctx context.Context, req advisor.Request) (advisor.Answer, error)
	Simulate(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error)
}

// AdviceHandler handles advisory endpoints.
type AdviceHandler struct {
	advisor Advisor
	store   *ledger.Store
	engine  metrics.Engine
	log     zerolog.Logger
}

// NewAdviceHandler creates a new advice handler. A nil advisor disables the endpoint.
func NewAdviceHandler(adv Advisor, store *ledger.Store, engine metrics.Engine, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{
		advisor: adv,
		store:   store,
		engine:  engine,
		log:     log,
	}
}

type adviceRequest struct {
	Question string `json:"question"`
	Scenario string `json:"scenario"`
}

// Advise handles POST /api/advice
// A body with a scenario runs a simulation; otherwise the question is answered.
func (h *AdviceHandler) Advise(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Advisor is not configured")
		return
	}

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap := h.store.Snapshot()
	summary := h.engine.ComputeSummary(snap.Transactions, snap.Profile)

	if scenario := strings.TrimSpace(req.Scenario); scenario != "" {
		text, err := h.advisor.Simulate(ctx, scenario, snap.Profile, summary)
		if err != nil {
			h.log.Error().Err(err).Msg("Simulation failed")
			middleware.WriteJSON(w, http.StatusOK, advisor.Answer{Text: advisor.FallbackAnswer})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, advisor.Answer{Text: text})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "question or scenario is required")
		return
	}

	answer, err := h.advisor.Ask(ctx, advisor.Request{
		Transactions: snap.Transactions,
		Summary:      summary,
		Profile:      snap.Profile,
		Question:     req.Question,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Advisor request failed")
		answer = advisor.Answer{Text: advisor.FallbackAnswer}
	}

	middleware.WriteJSON(w, http.StatusOK, answer)
}
