package pipeline

import (
	"context"
	"image"
	"sync"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// MockReceiptExtractor is a mock implementation of ReceiptExtractor.
type MockReceiptExtractor struct {
	ExtractReceiptFunc func(ctx context.Context, image []byte, mimeType string) (Candidate, error)
}

func (m *MockReceiptExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
	if m.ExtractReceiptFunc != nil {
		return m.ExtractReceiptFunc(ctx, image, mimeType)
	}
	return Candidate{}, nil
}

// MockStatementExtractor is a mock implementation of StatementExtractor.
type MockStatementExtractor struct {
	ExtractStatementFunc func(ctx context.Context, text string) ([]Candidate, error)
}

func (m *MockStatementExtractor) ExtractStatement(ctx context.Context, text string) ([]Candidate, error) {
	if m.ExtractStatementFunc != nil {
		return m.ExtractStatementFunc(ctx, text)
	}
	return nil, nil
}

// MockDevice is a mock CaptureDevice that counts stream releases. When Gate is
// set, Acquire signals Entered and blocks until Gate is closed.
type MockDevice struct {
	AcquireErr error
	StillErr   error
	Entered    chan struct{}
	Gate       chan struct{}

	mu       sync.Mutex
	acquired int
	released int
}

func (d *MockDevice) Acquire(ctx context.Context) (CaptureStream, error) {
	if d.Gate != nil {
		if d.Entered != nil {
			close(d.Entered)
		}
		<-d.Gate
	}
	if d.AcquireErr != nil {
		return nil, d.AcquireErr
	}
	d.mu.Lock()
	d.acquired++
	d.mu.Unlock()
	return &mockStream{device: d}, nil
}

func (d *MockDevice) counts() (acquired, released int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquired, d.released
}

type mockStream struct {
	device *MockDevice
}

func (s *mockStream) Still(ctx context.Context) (image.Image, error) {
	if s.device.StillErr != nil {
		return nil, s.device.StillErr
	}
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func (s *mockStream) Close() error {
	s.device.mu.Lock()
	s.device.released++
	s.device.mu.Unlock()
	return nil
}

// memLedger is an in-memory Ledger.
type memLedger struct {
	mu        sync.Mutex
	txs       []domain.Transaction
	linked    bool
	appendErr error
}

func (l *memLedger) Append(ctx context.Context, tx domain.Transaction) error {
	return l.AppendAll(ctx, []domain.Transaction{tx})
}

func (l *memLedger) AppendAll(ctx context.Context, txs []domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.txs = append(l.txs, txs...)
	return nil
}

func (l *memLedger) MarkInstitutionLinked(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.linked = true
	return nil
}

func (l *memLedger) snapshot() ([]domain.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Transaction(nil), l.txs...), l.linked
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
