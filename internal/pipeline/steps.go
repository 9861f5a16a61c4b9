package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// PipelineStep represents a single step of the statement channel.
type PipelineStep interface {
	Execute(ctx context.Context, state *StatementState) error
}

// StatementState holds the shared state across statement steps.
type StatementState struct {
	AttemptID    string
	Text         string
	Candidates   []Candidate
	Transactions []domain.Transaction
	Dropped      int
}

// SubmitStep checks the statement text before any external call.
type SubmitStep struct{}

func (s *SubmitStep) Execute(ctx context.Context, state *StatementState) error {
	if strings.TrimSpace(state.Text) == "" {
		return ErrEmptyStatement
	}
	return nil
}

// ExtractStep sends the text to the extraction capability.
type ExtractStep struct {
	Extractor StatementExtractor
	onStart   func(ctx context.Context)
}

func (s *ExtractStep) Execute(ctx context.Context, state *StatementState) error {
	if s.onStart != nil {
		s.onStart(ctx)
	}
	cands, err := s.Extractor.ExtractStatement(ctx, state.Text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	state.Candidates = cands
	return nil
}

// NormalizeStep validates every candidate independently and drops the rest.
type NormalizeStep struct {
	Normalizer *Normalizer
}

func (s *NormalizeStep) Execute(ctx context.Context, state *StatementState) error {
	txs, dropped := s.Normalizer.NormalizeBatch(state.Candidates, domain.SourceBankSync)
	log := logger.FromContext(ctx)
	for _, err := range dropped {
		log.Debug().Err(err).Str("attempt_id", state.AttemptID).Msg("Dropped statement record")
	}
	state.Transactions = txs
	state.Dropped = len(dropped)
	return nil
}

// CommitStep appends the surviving transactions in one atomic call.
type CommitStep struct {
	Ledger Ledger
}

func (s *CommitStep) Execute(ctx context.Context, state *StatementState) error {
	if len(state.Transactions) == 0 {
		return nil
	}
	if err := s.Ledger.AppendAll(ctx, state.Transactions); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// LinkInstitutionStep flags the profile as linked once a sync has completed,
// whether or not any record survived normalization.
type LinkInstitutionStep struct {
	Ledger Ledger
}

func (s *LinkInstitutionStep) Execute(ctx context.Context, state *StatementState) error {
	if err := s.Ledger.MarkInstitutionLinked(ctx); err != nil {
		return fmt.Errorf("link institution: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially, stopping at the first error.
func (p *Pipeline) Execute(ctx context.Context, state *StatementState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
