package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
	now     func() time.Time
	logger  *applog.Logger
}

// Option customizes a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock overrides the clock used to resolve omitted dates.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.now = now
	}
}

// WithLogger sets the logger, scoped to the storage component.
func WithLogger(logger *applog.Logger) Option {
	return func(r *SQLiteRepository) {
		if logger != nil {
			r.logger = logger.WithComponent(applog.ComponentStorage)
		}
	}
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies the schema.
func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, unavailable("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable("open sqlite database", err)
	}

	// Single accessor; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("ping database", err)
	}

	logger := applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: applog.ComponentStorage,
	})
	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Initialize ensures the transactions table exists. Safe to call repeatedly.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(r.path); err != nil {
		return unavailable("initialize schema", err)
	}
	r.logger.DebugContext(ctx, "Schema ready", applog.FieldPath, r.path)
	return nil
}

// Insert persists a new transaction in a single statement. A zero date is
// resolved to today's date on the repository clock.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.NewTransaction) (core.Transaction, error) {
	date := t.Date
	if date.IsZero() {
		date = core.DateOf(r.now())
	}

	amount := t.Amount.InexactFloat64()
	if !finite(amount) {
		return core.Transaction{}, fmt.Errorf("create transaction: %w: amount %s does not fit a REAL column",
			core.ErrConstraintViolation, t.Amount)
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Amount:      amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        date.String(),
	})
	if err != nil {
		if isConstraint(err) {
			return core.Transaction{}, fmt.Errorf("create transaction: %w: %w", core.ErrConstraintViolation, err)
		}
		return core.Transaction{}, unavailable("create transaction", err)
	}

	tx, err := toTransaction(row)
	if err != nil {
		return core.Transaction{}, unavailable("read created transaction", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(tx.ID, tx.Amount.String(), tx.Category, tx.Date.String()).
			ToSlice()...)

	return tx, nil
}

// ListAll returns every transaction in insertion order.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}

	transactions := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return nil, unavailable("decode transaction", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// SumByCategory returns the total amount per category. Categories with no
// transactions are absent.
func (r *SQLiteRepository) SumByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.queries.GetCategorySums(ctx)
	if err != nil {
		return nil, unavailable("get category sums", err)
	}

	sums := make(map[string]decimal.Decimal, len(rows))
	for _, cs := range rows {
		total, err := decodeAmount(cs.TotalAmount)
		if err != nil {
			return nil, unavailable("decode total for "+cs.Category, err)
		}
		sums[cs.Category] = total
	}
	return sums, nil
}

// ClearAll deletes every transaction and reports how many were removed.
// Identifiers already issued are not handed out again.
func (r *SQLiteRepository) ClearAll(ctx context.Context) (int64, error) {
	removed, err := r.queries.DeleteAllTransactions(ctx)
	if err != nil {
		return 0, unavailable("delete transactions", err)
	}

	r.logger.InfoContext(ctx, "All transactions cleared",
		applog.FieldOperation, applog.OpReset,
		applog.FieldCount, removed)
	return removed, nil
}

func toTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := decodeAmount(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Amount:      amount,
		Category:    row.Category,
		Description: row.Description,
		Date:        date,
	}, nil
}

func decodeAmount(f float64) (decimal.Decimal, error) {
	if !finite(f) {
		return decimal.Zero, fmt.Errorf("amount %v is not a finite number", f)
	}
	return decimal.NewFromFloat(f), nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
