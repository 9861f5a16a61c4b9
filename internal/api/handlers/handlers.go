package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

// LedgerHandler handles transaction, budget and profile endpoints.
type LedgerHandler struct {
	store  *ledger.Store
	engine metrics.Engine
	log    zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(store *ledger.Store, engine metrics.Engine, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:  store,
		engine: engine,
		log:    log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Transactions())
}

// createTransactionRequest is the manual entry form.
type createTransactionRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft := domain.TransactionDraft{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
	}
	if req.Date != "" {
		d, err := civil.ParseDate(req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		draft.Date = &d
	}

	tx, err := h.store.AddManual(r.Context(), draft)
	if err != nil {
		h.log.Warn().Err(err).Msg("Rejected manual transaction")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Summary handles GET /api/summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	summary := h.engine.ComputeSummary(snap.Transactions, snap.Profile)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary":    summary,
		"categories": metrics.CategoryBreakdown(snap.Transactions),
		"currency":   snap.Profile.Currency,
	})
}

// ListBudgets handles GET /api/budgets
func (h *LedgerHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Budgets())
}

// ReplaceBudgets handles PUT /api/budgets
func (h *LedgerHandler) ReplaceBudgets(w http.ResponseWriter, r *http.Request) {
	var budgets []domain.BudgetGoal
	if err := json.NewDecoder(r.Body).Decode(&budgets); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.ReplaceBudgets(r.Context(), budgets); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.store.Budgets())
}

// BudgetProgress handles GET /api/budgets/progress
func (h *LedgerHandler) BudgetProgress(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.engine.ComputeBudgetProgress(h.store.Budgets()))
}

// GetProfile handles GET /api/profile
func (h *LedgerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Profile())
}

// UpdateProfile handles PUT /api/profile
func (h *LedgerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, domain.ErrInvalidProfile) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to update profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.store.Profile())
}

// Reset handles POST /api/reset
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset(r.Context())
	h.log.Info().Msg("Ledger reset")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Debug().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
