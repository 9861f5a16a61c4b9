package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// Outcome is the observable result of one ingestion attempt.
type Outcome struct {
	Channel      string               `json:"channel"`
	AttemptID    string               `json:"attemptId"`
	State        State                `json:"state"`
	Transactions []domain.Transaction `json:"transactions,omitempty"`
	Dropped      int                  `json:"dropped,omitempty"`
	Message      string               `json:"message,omitempty"`
	Err          error                `json:"-"`
}

// Failed reports whether the attempt ended in the Failed state.
func (o Outcome) Failed() bool { return o.State == StateFailed }

// machine tracks one channel's state and serializes attempts on it.
type machine struct {
	channel string

	mu        sync.Mutex
	state     State
	attemptID string
}

func newMachine(channel string) *machine {
	return &machine{channel: channel, state: StateIdle}
}

// begin starts a new attempt if the channel is idle or finished.
func (m *machine) begin(ctx context.Context, next State) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle && !m.state.Terminal() {
		return "", ErrBusy
	}
	m.attemptID = uuid.NewString()
	m.setLocked(ctx, next)
	return m.attemptID, nil
}

// advance moves from -> to atomically; it reports false if the channel was
// not in from.
func (m *machine) advance(ctx context.Context, from, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return false
	}
	m.setLocked(ctx, to)
	return true
}

func (m *machine) set(ctx context.Context, next State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(ctx, next)
}

func (m *machine) setLocked(ctx context.Context, next State) {
	log := logger.FromContext(ctx)
	log.Debug().
		Str("channel", m.channel).
		Str("attempt_id", m.attemptID).
		Str("from", string(m.state)).
		Str("to", string(next)).
		Msg("Ingestion state transition")
	m.state = next
}

func (m *machine) current() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.attemptID
}

// fail moves the attempt to Failed and builds its outcome.
func (m *machine) fail(ctx context.Context, msg string, err error) Outcome {
	m.set(ctx, StateFailed)
	_, id := m.current()
	log := logger.FromContext(ctx)
	log.Warn().
		Err(err).
		Str("channel", m.channel).
		Str("attempt_id", id).
		Msg(msg)
	return Outcome{Channel: m.channel, AttemptID: id, State: StateFailed, Message: msg, Err: err}
}

func (m *machine) busy() Outcome {
	state, id := m.current()
	return Outcome{
		Channel:   m.channel,
		AttemptID: id,
		State:     state,
		Message:   "An ingestion attempt is already in progress.",
		Err:       ErrBusy,
	}
}
