// Package ledger holds the session's authoritative transactions, budgets and
// profile, and persists a full snapshot of a slot after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// Snapshot is the full persisted state of the session.
type Snapshot struct {
	Transactions []domain.Transaction `json:"transactions"`
	Budgets      []domain.BudgetGoal  `json:"budgets"`
	Profile      domain.UserProfile   `json:"profile"`
}

// Store is safe for concurrent use. Persistence failures are logged and the
// in-memory state stays authoritative.
type Store struct {
	mu      sync.Mutex
	backend SnapshotStore

	txs     []domain.Transaction
	budgets []domain.BudgetGoal
	profile domain.UserProfile

	now   func() time.Time
	newID func() string
}

// Open loads every slot from backend. A missing slot starts from the demo
// seeds or default profile; a slot that does not decode is ignored.
func Open(ctx context.Context, backend SnapshotStore) (*Store, error) {
	s := &Store{backend: backend, now: time.Now, newID: uuid.NewString}

	txs, err := loadSlot(ctx, backend, KeyTransactions, domain.SeedTransactions, validateTransactions)
	if err != nil {
		return nil, err
	}
	budgets, err := loadSlot(ctx, backend, KeyBudgets, domain.SeedBudgets, validateBudgets)
	if err != nil {
		return nil, err
	}
	profile, err := loadSlot(ctx, backend, KeyProfile, domain.DefaultProfile, func(p domain.UserProfile) error { return p.Validate() })
	if err != nil {
		return nil, err
	}

	s.txs, s.budgets, s.profile = txs, budgets, profile
	return s, nil
}

// loadSlot returns the stored value, or fallback() when the slot is empty or
// holds an incompatible shape. Only backend I/O errors are returned.
func loadSlot[T any](ctx context.Context, backend SnapshotStore, key string, fallback func() T, validate func(T) error) (T, error) {
	log := logger.FromContext(ctx)

	data, err := backend.Load(ctx, key)
	if errors.Is(err, ErrSnapshotNotFound) {
		log.Info().Str("key", key).Msg("No snapshot found, starting from defaults")
		return fallback(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("ledger.Open: load %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Ignoring snapshot with incompatible shape")
		return fallback(), nil
	}
	if err := validate(v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Ignoring snapshot that fails validation")
		return fallback(), nil
	}
	return v, nil
}

func validateTransactions(txs []domain.Transaction) error {
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if seen[tx.ID] {
			return fmt.Errorf("duplicate transaction id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
	return nil
}

func validateBudgets(budgets []domain.BudgetGoal) error {
	seen := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return err
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidBudget, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

// Transactions returns a copy of the ledger in insertion order.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.txs...)
}

// Budgets returns a copy of the budget list.
func (s *Store) Budgets() []domain.BudgetGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BudgetGoal(nil), s.budgets...)
}

// Profile returns the current profile.
func (s *Store) Profile() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Snapshot returns a consistent copy of all three slots.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Transactions: append([]domain.Transaction(nil), s.txs...),
		Budgets:      append([]domain.BudgetGoal(nil), s.budgets...),
		Profile:      s.profile,
	}
}

// Append adds one validated transaction.
func (s *Store) Append(ctx context.Context, tx domain.Transaction) error {
	return s.AppendAll(ctx, []domain.Transaction{tx})
}

// AppendAll adds a batch atomically: either every transaction is added or none.
func (s *Store) AppendAll(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]bool, len(s.txs)+len(txs))
	for _, tx := range s.txs {
		ids[tx.ID] = true
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("AppendAll: transaction %s: %w", tx.ID, err)
		}
		if ids[tx.ID] {
			return fmt.Errorf("AppendAll: duplicate transaction id %s", tx.ID)
		}
		ids[tx.ID] = true
	}

	s.txs = append(s.txs, txs...)
	s.persist(ctx, KeyTransactions, s.txs)
	return nil
}

// AddManual creates a transaction from user input and appends it. The sign of
// the amount is dropped; a zero amount is rejected.
func (s *Store) AddManual(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	draft.Source = domain.SourceManual
	tx, err := domain.NewTransaction(draft, s.newID(), civil.DateOf(s.now()))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("AddManual: %w", err)
	}
	if tx.Amount == 0 {
		return domain.Transaction{}, fmt.Errorf("AddManual: %w", domain.ErrInvalidAmount)
	}
	if err := s.Append(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// ReplaceBudgets swaps the whole budget list.
func (s *Store) ReplaceBudgets(ctx context.Context, budgets []domain.BudgetGoal) error {
	if err := validateBudgets(budgets); err != nil {
		return fmt.Errorf("ReplaceBudgets: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append([]domain.BudgetGoal(nil), budgets...)
	s.persist(ctx, KeyBudgets, s.budgets)
	return nil
}

// UpdateProfile applies a user edit. The institution flag is owned by the
// statement channel and is kept as is.
func (s *Store) UpdateProfile(ctx context.Context, p domain.UserProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("UpdateProfile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.InstitutionLinked = s.profile.InstitutionLinked
	s.profile = p
	s.persist(ctx, KeyProfile, s.profile)
	return nil
}

// MarkInstitutionLinked records that a statement sync has completed.
func (s *Store) MarkInstitutionLinked(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.InstitutionLinked {
		return nil
	}
	s.profile.InstitutionLinked = true
	s.persist(ctx, KeyProfile, s.profile)
	return nil
}

// Restore replaces all three slots with snap after validating it.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	if err := validateTransactions(snap.Transactions); err != nil {
		return fmt.Errorf("Restore: %w", err)
	}
	if err := validateBudgets(snap.Budgets); err != nil {
		return fmt.Errorf("Restore: %w", err)
	}
	if err := snap.Profile.Validate(); err != nil {
		return fmt.Errorf("Restore: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append([]domain.Transaction(nil), snap.Transactions...)
	s.budgets = append([]domain.BudgetGoal(nil), snap.Budgets...)
	s.profile = snap.Profile
	s.persist(ctx, KeyTransactions, s.txs)
	s.persist(ctx, KeyBudgets, s.budgets)
	s.persist(ctx, KeyProfile, s.profile)
	return nil
}

// Reset destroys every transaction. Budgets and profile are kept.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = []domain.Transaction{}
	s.persist(ctx, KeyTransactions, s.txs)
}

// persist writes one slot. Callers hold s.mu so saves are ordered.
func (s *Store) persist(ctx context.Context, key string, v interface{}) {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode snapshot")
		return
	}
	if err := s.backend.Save(ctx, key, data); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to save snapshot, continuing with in-memory state")
	}
}
