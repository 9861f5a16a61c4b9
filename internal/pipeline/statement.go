package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// StatementChannel ingests raw statement text:
// Idle -> Submitted -> Extracting -> Committed | Failed.
type StatementChannel struct {
	m        *machine
	pipeline *Pipeline
}

// NewStatementChannel wires the statement steps. A nil normalizer uses NewNormalizer.
func NewStatementChannel(extractor StatementExtractor, ledger Ledger, normalizer *Normalizer) *StatementChannel {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	c := &StatementChannel{m: newMachine(ChannelStatement)}
	c.pipeline = NewPipeline(
		&SubmitStep{},
		&ExtractStep{
			Extractor: extractor,
			onStart:   func(ctx context.Context) { c.m.set(ctx, StateExtracting) },
		},
		&NormalizeStep{Normalizer: normalizer},
		&CommitStep{Ledger: ledger},
		&LinkInstitutionStep{Ledger: ledger},
	)
	return c
}

// State returns the channel's current state.
func (c *StatementChannel) State() State {
	s, _ := c.m.current()
	return s
}

// Submit runs one statement attempt to a terminal state. Extraction errors
// discard the whole batch; invalid records are dropped individually.
func (c *StatementChannel) Submit(ctx context.Context, text string) Outcome {
	attemptID, err := c.m.begin(ctx, StateSubmitted)
	if err != nil {
		return c.m.busy()
	}

	state := &StatementState{AttemptID: attemptID, Text: text}
	if err := c.pipeline.Execute(ctx, state); err != nil {
		return c.m.fail(ctx, failureMessage(err), fmt.Errorf("StatementChannel.Submit: %w", err))
	}

	c.m.set(ctx, StateCommitted)
	return Outcome{
		Channel:      ChannelStatement,
		AttemptID:    attemptID,
		State:        StateCommitted,
		Transactions: state.Transactions,
		Dropped:      state.Dropped,
		Message:      fmt.Sprintf("Imported %d transactions.", len(state.Transactions)),
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyStatement):
		return "The statement is empty."
	case errors.Is(err, ErrExtraction):
		return "Statement sync failed."
	default:
		return "Could not save the imported transactions."
	}
}
