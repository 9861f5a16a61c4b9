package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// ReceiptChannel ingests one photographed receipt per attempt:
// Idle -> Capturing -> Captured -> Extracting -> Committed | Failed.
type ReceiptChannel struct {
	device     CaptureDevice
	extractor  ReceiptExtractor
	ledger     Ledger
	normalizer *Normalizer
	m          *machine

	streamMu sync.Mutex
	stream   CaptureStream
}

// NewReceiptChannel wires a receipt channel. A nil normalizer uses NewNormalizer.
func NewReceiptChannel(device CaptureDevice, extractor ReceiptExtractor, ledger Ledger, normalizer *Normalizer) *ReceiptChannel {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &ReceiptChannel{
		device:     device,
		extractor:  extractor,
		ledger:     ledger,
		normalizer: normalizer,
		m:          newMachine(ChannelReceipt),
	}
}

// State returns the channel's current state.
func (c *ReceiptChannel) State() State {
	s, _ := c.m.current()
	return s
}

// Open acquires the capture device. On success the channel is Capturing and
// waits for Capture; on failure the attempt ends Failed without retry. A stream
// acquired after the attempt was closed is released immediately.
func (c *ReceiptChannel) Open(ctx context.Context) Outcome {
	attemptID, err := c.m.begin(ctx, StateCapturing)
	if err != nil {
		return c.m.busy()
	}

	stream, acquireErr := c.device.Acquire(ctx)

	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	state, id := c.m.current()
	if state != StateCapturing || id != attemptID {
		if acquireErr == nil {
			c.releaser(ctx, stream)()
		}
		return Outcome{
			Channel:   ChannelReceipt,
			AttemptID: attemptID,
			State:     state,
			Message:   "Capture was closed before the camera opened.",
			Err:       fmt.Errorf("ReceiptChannel.Open: %w", ErrCaptureUnavailable),
		}
	}
	if acquireErr != nil {
		return c.m.fail(ctx, "Camera access denied.", fmt.Errorf("ReceiptChannel.Open: %w: %w", ErrCaptureUnavailable, acquireErr))
	}
	c.stream = stream

	return Outcome{Channel: ChannelReceipt, AttemptID: attemptID, State: StateCapturing}
}

// Capture takes a still frame, extracts it and commits the resulting
// transaction. The capture stream is released on every path.
func (c *ReceiptChannel) Capture(ctx context.Context) Outcome {
	stream, out, ok := c.claimStream(ctx)
	if !ok {
		return out
	}
	release := c.releaser(ctx, stream)
	defer release()

	img, err := stream.Still(ctx)
	if err != nil {
		return c.m.fail(ctx, "Could not capture a frame.", fmt.Errorf("ReceiptChannel.Capture: still: %w: %w", ErrCaptureUnavailable, err))
	}
	data, err := EncodeJPEG(img)
	if err != nil {
		return c.m.fail(ctx, "Could not capture a frame.", fmt.Errorf("ReceiptChannel.Capture: encode: %w", err))
	}

	c.m.set(ctx, StateExtracting)
	cand, err := c.extractor.ExtractReceipt(ctx, data, ReceiptMIMEType)
	if err != nil {
		return c.m.fail(ctx, "Could not read receipt.", fmt.Errorf("ReceiptChannel.Capture: %w: %w", ErrExtraction, err))
	}

	tx, err := c.normalizer.Normalize(cand, domain.SourceReceipt)
	if err != nil {
		return c.m.fail(ctx, "Receipt did not contain a valid amount.", fmt.Errorf("ReceiptChannel.Capture: %w", err))
	}
	if err := c.ledger.Append(ctx, tx); err != nil {
		return c.m.fail(ctx, "Could not save receipt.", fmt.Errorf("ReceiptChannel.Capture: append: %w", err))
	}

	release()
	c.m.set(ctx, StateCommitted)
	_, attemptID := c.m.current()
	return Outcome{
		Channel:      ChannelReceipt,
		AttemptID:    attemptID,
		State:        StateCommitted,
		Transactions: []domain.Transaction{tx},
	}
}

// Scan runs a whole attempt: Open followed by Capture.
func (c *ReceiptChannel) Scan(ctx context.Context) Outcome {
	if out := c.Open(ctx); out.State != StateCapturing {
		return out
	}
	return c.Capture(ctx)
}

// Close abandons an open capture and returns the channel to Idle. While an
// extraction is in flight it does nothing: the stream is released when the
// pending call resolves.
func (c *ReceiptChannel) Close(ctx context.Context) {
	c.streamMu.Lock()
	if !c.m.advance(ctx, StateCapturing, StateIdle) {
		c.streamMu.Unlock()
		return
	}
	stream := c.stream
	c.stream = nil
	c.streamMu.Unlock()
	c.releaser(ctx, stream)()
}

// claimStream moves Capturing -> Captured and takes the open stream. While the
// device is still being acquired the channel reports busy.
func (c *ReceiptChannel) claimStream(ctx context.Context) (CaptureStream, Outcome, bool) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if state, _ := c.m.current(); state == StateCapturing && c.stream == nil {
		out := c.m.busy()
		out.Message = "The camera is still opening."
		return nil, out, false
	}
	if !c.m.advance(ctx, StateCapturing, StateCaptured) {
		return nil, c.notCapturing(), false
	}
	stream := c.stream
	c.stream = nil
	return stream, Outcome{}, true
}

// releaser returns an idempotent Close for stream.
func (c *ReceiptChannel) releaser(ctx context.Context, stream CaptureStream) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if stream == nil {
				return
			}
			if err := stream.Close(); err != nil {
				log := logger.FromContext(ctx)
				log.Warn().Err(err).Msg("Failed to release capture stream")
			}
		})
	}
}

func (c *ReceiptChannel) notCapturing() Outcome {
	out := c.m.busy()
	if out.State == StateIdle || out.State.Terminal() {
		out.Message = "No capture is open."
		out.Err = fmt.Errorf("ReceiptChannel.Capture: %w", ErrCaptureUnavailable)
	}
	return out
}
