package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/export"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

// ExportHandler serves CSV downloads of the ledger and summary.
type ExportHandler struct {
	store  *ledger.Store
	engine metrics.Engine
	now    func() time.Time
	log    zerolog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(store *ledger.Store, engine metrics.Engine, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		store:  store,
		engine: engine,
		now:    time.Now,
		log:    log,
	}
}

// ExportTransactions handles GET /api/export/transactions
func (h *ExportHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	h.writeTable(w, "transactions", export.Transactions(h.store.Transactions()))
}

// ExportSummary handles GET /api/export/summary
func (h *ExportHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	h.writeTable(w, "summary", export.Summary(h.engine.ComputeSummary(snap.Transactions, snap.Profile)))
}

func (h *ExportHandler) writeTable(w http.ResponseWriter, base string, t export.Table) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		if errors.Is(err, export.ErrEmpty) {
			middleware.WriteError(w, http.StatusNotFound, "Nothing to export")
			return
		}
		h.log.Error().Err(err).Str("export", base).Msg("Failed to write CSV")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	filename := export.Filename(base, civil.DateOf(h.now()))
	w.Header().Set("Content-Type", "text/csv;charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
