package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Ledger     *LedgerHandler
	Receipts   *ReceiptsHandler
	Statements *StatementsHandler
	Jobs       *JobsHandler
	Export     *ExportHandler
	Advice     *AdviceHandler
}

// methods routes a path to one handler per HTTP method.
func methods(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// NewRouter creates the API mux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Ledger endpoints
	mux.HandleFunc("/api/transactions", methods(map[string]http.HandlerFunc{
		http.MethodGet:  h.Ledger.ListTransactions,
		http.MethodPost: h.Ledger.CreateTransaction,
	}))
	mux.HandleFunc("/api/summary", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Ledger.Summary,
	}))
	mux.HandleFunc("/api/budgets", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Ledger.ListBudgets,
		http.MethodPut: h.Ledger.ReplaceBudgets,
	}))
	mux.HandleFunc("/api/budgets/progress", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Ledger.BudgetProgress,
	}))
	mux.HandleFunc("/api/profile", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Ledger.GetProfile,
		http.MethodPut: h.Ledger.UpdateProfile,
	}))
	mux.HandleFunc("/api/reset", methods(map[string]http.HandlerFunc{
		http.MethodPost: h.Ledger.Reset,
	}))

	// Ingestion endpoints
	if h.Receipts != nil {
		mux.HandleFunc("/api/receipts", methods(map[string]http.HandlerFunc{
			http.MethodPost: h.Receipts.ScanReceipt,
		}))
	}
	if h.Statements != nil {
		mux.HandleFunc("/api/statements", methods(map[string]http.HandlerFunc{
			http.MethodPost: h.Statements.SubmitStatement,
		}))
	}

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Jobs.ListJobs,
	}))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		// Extract job ID from path
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		h.Jobs.GetJob(w, r, jobID)
	})

	// Export endpoints
	mux.HandleFunc("/api/export/transactions", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Export.ExportTransactions,
	}))
	mux.HandleFunc("/api/export/summary", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.Export.ExportSummary,
	}))

	mux.HandleFunc("/api/advice", methods(map[string]http.HandlerFunc{
		http.MethodPost: h.Advice.Advise,
	}))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
