package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

func TestReceiptChannel_Commit(t *testing.T) {
	device := &MockDevice{}
	ledger := &memLedger{}
	var gotMIME string
	extractor := &MockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
			gotMIME = mimeType
			if len(image) == 0 {
				t.Error("expected encoded image bytes")
			}
			return Candidate{Amount: floatPtr(23.4), Description: strPtr("Corner Shop"), Category: strPtr("Food")}, nil
		},
	}
	ch := NewReceiptChannel(device, extractor, ledger, fixedNormalizer())

	out := ch.Scan(context.Background())

	if out.State != StateCommitted {
		t.Fatalf("State = %q, want committed (err %v)", out.State, out.Err)
	}
	if gotMIME != ReceiptMIMEType {
		t.Errorf("mime type = %q, want %q", gotMIME, ReceiptMIMEType)
	}
	txs, _ := ledger.snapshot()
	if len(txs) != 1 || txs[0].Source != domain.SourceReceipt || txs[0].Amount != 23.4 {
		t.Errorf("unexpected ledger contents: %+v", txs)
	}
	if acquired, released := device.counts(); acquired != 1 || released != 1 {
		t.Errorf("acquired %d released %d, want 1 and 1", acquired, released)
	}
}

func TestReceiptChannel_Failures(t *testing.T) {
	tests := []struct {
		name         string
		device       *MockDevice
		extract      func(ctx context.Context, image []byte, mimeType string) (Candidate, error)
		appendErr    error
		wantErr      error
		wantAcquired int
	}{
		{
			name:    "permission denied",
			device:  &MockDevice{AcquireErr: errors.New("permission denied")},
			wantErr: ErrCaptureUnavailable,
		},
		{
			name:         "frame capture error",
			device:       &MockDevice{StillErr: errors.New("no frame")},
			wantErr:      ErrCaptureUnavailable,
			wantAcquired: 1,
		},
		{
			name:   "extraction error",
			device: &MockDevice{},
			extract: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
				return Candidate{}, errors.New("network down")
			},
			wantErr:      ErrExtraction,
			wantAcquired: 1,
		},
		{
			name:   "negative amount is rejected",
			device: &MockDevice{},
			extract: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
				return Candidate{Amount: floatPtr(-5), Description: strPtr("x")}, nil
			},
			wantErr:      ErrRejected,
			wantAcquired: 1,
		},
		{
			name:   "ledger append error",
			device: &MockDevice{},
			extract: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
				return Candidate{Amount: floatPtr(5)}, nil
			},
			appendErr:    errors.New("disk full"),
			wantAcquired: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &memLedger{appendErr: tt.appendErr}
			ch := NewReceiptChannel(tt.device, &MockReceiptExtractor{ExtractReceiptFunc: tt.extract}, ledger, fixedNormalizer())

			out := ch.Scan(context.Background())

			if out.State != StateFailed || !out.Failed() {
				t.Fatalf("State = %q, want failed", out.State)
			}
			if out.Message == "" {
				t.Error("expected a user-visible message")
			}
			if tt.wantErr != nil && !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", out.Err, tt.wantErr)
			}
			if txs, _ := ledger.snapshot(); len(txs) != 0 {
				t.Errorf("ledger has %d entries, want 0", len(txs))
			}
			acquired, released := tt.device.counts()
			if acquired != tt.wantAcquired || released != acquired {
				t.Errorf("acquired %d released %d, want %d released", acquired, released, tt.wantAcquired)
			}
			if ch.State() != StateFailed {
				t.Errorf("channel State() = %q, want failed", ch.State())
			}
		})
	}
}

func TestReceiptChannel_Reentry(t *testing.T) {
	device := &MockDevice{}
	ch := NewReceiptChannel(device, &MockReceiptExtractor{}, &memLedger{}, nil)
	ctx := context.Background()

	if out := ch.Open(ctx); out.State != StateCapturing {
		t.Fatalf("Open State = %q, want capturing", out.State)
	}
	if out := ch.Open(ctx); !errors.Is(out.Err, ErrBusy) {
		t.Errorf("second Open Err = %v, want ErrBusy", out.Err)
	}

	ch.Close(ctx)
	if ch.State() != StateIdle {
		t.Errorf("State after Close = %q, want idle", ch.State())
	}
	if _, released := device.counts(); released != 1 {
		t.Errorf("released = %d, want 1", released)
	}

	if out := ch.Capture(ctx); out.Err == nil {
		t.Error("Capture without Open should fail")
	}
}

func TestReceiptChannel_RestartAfterFailure(t *testing.T) {
	calls := 0
	extractor := &MockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
			calls++
			if calls == 1 {
				return Candidate{}, errors.New("timeout")
			}
			return Candidate{Amount: floatPtr(7)}, nil
		},
	}
	ch := NewReceiptChannel(&MockDevice{}, extractor, &memLedger{}, nil)

	if out := ch.Scan(context.Background()); out.State != StateFailed {
		t.Fatalf("first attempt State = %q, want failed", out.State)
	}
	if out := ch.Scan(context.Background()); out.State != StateCommitted {
		t.Fatalf("second attempt State = %q, want committed", out.State)
	}
}

func TestReceiptChannel_CloseDuringExtraction(t *testing.T) {
	device := &MockDevice{}
	started := make(chan struct{})
	proceed := make(chan struct{})
	extractor := &MockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
			close(started)
			<-proceed
			return Candidate{Amount: floatPtr(4)}, nil
		},
	}
	ch := NewReceiptChannel(device, extractor, &memLedger{}, nil)

	var wg sync.WaitGroup
	var out Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		out = ch.Scan(context.Background())
	}()

	<-started
	ch.Close(context.Background())
	if _, released := device.counts(); released != 0 {
		t.Errorf("stream released while extraction in flight")
	}
	close(proceed)
	wg.Wait()

	if out.State != StateCommitted {
		t.Errorf("State = %q, want committed", out.State)
	}
	if _, released := device.counts(); released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
}

func TestReceiptChannel_CloseDuringAcquire(t *testing.T) {
	device := &MockDevice{Entered: make(chan struct{}), Gate: make(chan struct{})}
	ch := NewReceiptChannel(device, &MockReceiptExtractor{}, &memLedger{}, nil)
	ctx := context.Background()

	done := make(chan Outcome)
	go func() { done <- ch.Open(ctx) }()

	<-device.Entered
	ch.Close(ctx)
	close(device.Gate)
	out := <-done

	if !errors.Is(out.Err, ErrCaptureUnavailable) {
		t.Errorf("Open Err = %v, want ErrCaptureUnavailable", out.Err)
	}
	if out.State != StateIdle || ch.State() != StateIdle {
		t.Errorf("Open State = %q, channel State = %q, want idle", out.State, ch.State())
	}
	if acquired, released := device.counts(); acquired != 1 || released != 1 {
		t.Errorf("acquired %d released %d, want 1 and 1", acquired, released)
	}

	if out := ch.Capture(ctx); !errors.Is(out.Err, ErrCaptureUnavailable) {
		t.Errorf("Capture after closed Open Err = %v, want ErrCaptureUnavailable", out.Err)
	}
}

func TestReceiptChannel_CaptureDuringAcquire(t *testing.T) {
	device := &MockDevice{Entered: make(chan struct{}), Gate: make(chan struct{})}
	extractor := &MockReceiptExtractor{
		ExtractReceiptFunc: func(ctx context.Context, image []byte, mimeType string) (Candidate, error) {
			return Candidate{Amount: floatPtr(9.5), Description: strPtr("Bakery")}, nil
		},
	}
	ch := NewReceiptChannel(device, extractor, &memLedger{}, nil)
	ctx := context.Background()

	done := make(chan Outcome)
	go func() { done <- ch.Open(ctx) }()

	<-device.Entered
	early := ch.Capture(ctx)
	if !errors.Is(early.Err, ErrBusy) {
		t.Errorf("Capture during Acquire Err = %v, want ErrBusy", early.Err)
	}
	if early.State != StateCapturing {
		t.Errorf("Capture during Acquire State = %q, want capturing", early.State)
	}

	close(device.Gate)
	if out := <-done; out.State != StateCapturing {
		t.Fatalf("Open State = %q, want capturing (err %v)", out.State, out.Err)
	}
	if out := ch.Capture(ctx); out.State != StateCommitted {
		t.Fatalf("Capture State = %q, want committed (err %v)", out.State, out.Err)
	}
	if acquired, released := device.counts(); acquired != 1 || released != 1 {
		t.Errorf("acquired %d released %d, want 1 and 1", acquired, released)
	}
}
