package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Store keeps transactions in process memory. It follows the same contract
// as the SQLite repository, including never reusing identifiers.
type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	lastID int64
	now    func() time.Time
	closed bool
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock returns a store that resolves omitted dates with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

func (s *Store) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check()
}

// Insert stores the transaction and assigns the next identifier.
func (s *Store) Insert(_ context.Context, t core.NewTransaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w: %w", core.ErrConstraintViolation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return core.Transaction{}, err
	}

	date := t.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	s.lastID++
	tx := core.Transaction{
		ID:          s.lastID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        date,
	}
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	return append([]core.Transaction{}, s.items...), nil
}

func (s *Store) SumByCategory(_ context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal)
	for _, tx := range s.items {
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}
	return sums, nil
}

func (s *Store) ClearAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	removed := int64(len(s.items))
	s.items = nil
	return removed, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) check() error {
	if s.closed {
		return fmt.Errorf("memory store: %w: store is closed", core.ErrStorageUnavailable)
	}
	return nil
}
