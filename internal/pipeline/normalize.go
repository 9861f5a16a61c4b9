package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// Normalizer turns candidates into ledger transactions.
type Normalizer struct {
	// Now supplies "today" for undated candidates. Defaults to time.Now.
	Now func() time.Time
	// NewID supplies fresh transaction ids. Defaults to uuid.NewString.
	NewID func() string
}

// NewNormalizer returns a Normalizer on the process clock and random ids.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now, NewID: uuid.NewString}
}

// Normalize validates a single candidate and stamps it with source.
// Candidates without a positive finite amount are rejected with ErrRejected.
func (n *Normalizer) Normalize(c Candidate, source domain.Source) (domain.Transaction, error) {
	if c.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("Normalize: %w: missing amount", ErrRejected)
	}
	amount := *c.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("Normalize: %w: amount %v", ErrRejected, amount)
	}

	draft := domain.TransactionDraft{
		Amount: amount,
		Source: source,
	}
	if d, ok := parseCandidateDate(c.Date); ok {
		draft.Date = &d
	}
	if c.Description != nil {
		draft.Description = *c.Description
	}
	if c.Category != nil {
		draft.Category = *c.Category
	}
	if c.Type != nil {
		draft.Type = *c.Type
	}

	tx, err := domain.NewTransaction(draft, n.newID(), civil.DateOf(n.now()))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Normalize: %w: %w", ErrRejected, err)
	}
	return tx, nil
}

// NormalizeBatch validates each candidate independently. Rejected candidates
// are dropped and returned separately so callers can log them.
func (n *Normalizer) NormalizeBatch(cs []Candidate, source domain.Source) ([]domain.Transaction, []error) {
	out := make([]domain.Transaction, 0, len(cs))
	var dropped []error
	for i, c := range cs {
		tx, err := n.Normalize(c, source)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("candidate %d: %w", i, err))
			continue
		}
		out = append(out, tx)
	}
	return out, dropped
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) newID() string {
	if n.NewID == nil {
		return uuid.NewString()
	}
	return n.NewID()
}

// parseCandidateDate accepts YYYY-MM-DD, optionally followed by a time part.
func parseCandidateDate(s *string) (civil.Date, bool) {
	if s == nil {
		return civil.Date{}, false
	}
	v := strings.TrimSpace(*s)
	if len(v) > 10 {
		v = v[:10]
	}
	d, err := civil.ParseDate(v)
	if err != nil || !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}

// IsRejected reports whether err is a normalization rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
