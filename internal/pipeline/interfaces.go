package pipeline

import (
	"context"
	"image"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// ReceiptExtractor turns one encoded receipt image into one candidate record.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (Candidate, error)
}

// StatementExtractor turns raw statement text into an ordered list of candidates.
// An error discards the whole batch.
type StatementExtractor interface {
	ExtractStatement(ctx context.Context, text string) ([]Candidate, error)
}

// Ledger is the subset of the ledger store the channels commit through.
// Each call is atomic with respect to other callers.
type Ledger interface {
	Append(ctx context.Context, tx domain.Transaction) error
	AppendAll(ctx context.Context, txs []domain.Transaction) error
	MarkInstitutionLinked(ctx context.Context) error
}

// CaptureDevice acquires an image-capture resource.
type CaptureDevice interface {
	Acquire(ctx context.Context) (CaptureStream, error)
}

// CaptureStream is an acquired capture resource. Close must be called exactly
// once on every path.
type CaptureStream interface {
	Still(ctx context.Context) (image.Image, error)
	Close() error
}
