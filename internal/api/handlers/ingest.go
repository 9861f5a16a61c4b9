package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/capture"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/statementtext"
)

// MaxUploadBytes bounds receipt images and statement uploads.
const MaxUploadBytes = 10 << 20

// ReceiptsHandler turns an uploaded receipt photo into a ledger entry.
type ReceiptsHandler struct {
	extractor  pipeline.ReceiptExtractor
	ledger     pipeline.Ledger
	normalizer *pipeline.Normalizer
	log        zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(extractor pipeline.ReceiptExtractor, ledger pipeline.Ledger, normalizer *pipeline.Normalizer, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		extractor:  extractor,
		ledger:     ledger,
		normalizer: normalizer,
		log:        log,
	}
}

// ScanReceipt handles POST /api/receipts
// The body is the encoded image. Each request is its own capture attempt.
func (h *ReceiptsHandler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Image body is required")
		return
	}

	channel := pipeline.NewReceiptChannel(capture.UploadDevice{Data: data}, h.extractor, h.ledger, h.normalizer)
	out := channel.Scan(r.Context())

	h.log.Info().
		Str("attempt_id", out.AttemptID).
		Str("state", string(out.State)).
		Int("bytes", len(data)).
		Msg("Receipt scan finished")

	middleware.WriteJSON(w, outcomeStatus(out), out)
}

// StatementsHandler queues statement imports.
type StatementsHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(publisher jobs.Publisher, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		publisher: publisher,
		log:       log,
	}
}

// SubmitStatement handles POST /api/statements
// The body is plain statement text or a PDF; the import runs on the job queue.
func (h *StatementsHandler) SubmitStatement(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Statement too large")
		return
	}

	var text string
	if statementtext.IsPDF(data) {
		text, err = statementtext.FromPDF(data)
	} else {
		text, err = statementtext.FromPlain(data)
	}
	if err != nil {
		if errors.Is(err, statementtext.ErrNoText) {
			middleware.WriteError(w, http.StatusBadRequest, "Statement has no readable text")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Could not read statement")
		return
	}

	job := &jobs.StatementImportJob{Text: text}
	if name := r.URL.Query().Get("filename"); name != "" {
		job.Filename = filepath.Base(name)
	}

	if err := h.publisher.PublishImportStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue statement import")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue statement import")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int("chars", len(text)).Msg("Statement import enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

func outcomeStatus(out pipeline.Outcome) int {
	switch {
	case errors.Is(out.Err, pipeline.ErrBusy):
		return http.StatusConflict
	case errors.Is(out.Err, pipeline.ErrCaptureUnavailable):
		return http.StatusBadRequest
	case out.Failed():
		return http.StatusUnprocessableEntity
	case out.State == pipeline.StateCommitted:
		return http.StatusCreated
	}
	return http.StatusOK
}
