package pipeline

import "errors"

const (
	// DefaultStatementModel is the Gemini model used for statement extraction.
	DefaultStatementModel = "gemini-2.5-pro"

	// DefaultReceiptModel is the Gemini model used for receipt extraction.
	DefaultReceiptModel = "gemini-2.5-flash"

	// ReceiptMIMEType is the transport encoding of captured receipt frames.
	ReceiptMIMEType = "image/jpeg"

	statementThinkingBudget = 2000
)

var (
	ErrCaptureUnavailable = errors.New("capture device unavailable")
	ErrExtraction         = errors.New("extraction failed")
	ErrRejected           = errors.New("record rejected")
	ErrBusy               = errors.New("channel already has an attempt in flight")
	ErrEmptyStatement     = errors.New("statement text is empty")
)

// State is a channel's position in its ingestion state machine.
type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateCaptured   State = "captured"
	StateSubmitted  State = "submitted"
	StateExtracting State = "extracting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}

// Channel names used in logs and outcomes.
const (
	ChannelReceipt   = "receipt"
	ChannelStatement = "statement"
)
