package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/export"
	applog "ledger/internal/log"
)

// TransactionStore is the durable collection of transactions the ledger
// works against.
type TransactionStore interface {
	Initialize(ctx context.Context) error
	Insert(ctx context.Context, t core.NewTransaction) (core.Transaction, error)
	ListAll(ctx context.Context) ([]core.Transaction, error)
	SumByCategory(ctx context.Context) (map[string]decimal.Decimal, error)
	ClearAll(ctx context.Context) (int64, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(title, message string) (bool, error)
}

const (
	ResetTitle   = "Confirm Reset"
	ResetMessage = "Are you sure you want to clear all data? This cannot be undone."
)

// ExportResult describes a completed export.
type ExportResult struct {
	Path string
	Rows int
}

// ResetResult describes the outcome of a reset request. Removed is only
// meaningful when Confirmed is true.
type ResetResult struct {
	Confirmed bool
	Removed   int64
}

// Ledger validates user input before it reaches the store and derives the
// listing, summary and export views from stored transactions.
type Ledger struct {
	store      TransactionStore
	exportPath string
	logger     *applog.Logger
	exportLog  *applog.Logger

	// listing is the transient copy currently on display.
	listing []core.Transaction
}

func NewLedger(store TransactionStore, exportPath string, logger *applog.Logger) *Ledger {
	if exportPath == "" {
		exportPath = export.DefaultPath
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Ledger{
		store:      store,
		exportPath: exportPath,
		logger:     logger.WithComponent(applog.ComponentLedger),
		exportLog:  logger.WithComponent(applog.ComponentExport),
	}
}

// Start makes sure the store's schema exists and loads the initial listing.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Initialize(ctx); err != nil {
		l.logFailure(ctx, applog.OpStartup, err)
		return fmt.Errorf("initialize store: %w", err)
	}
	_, err := l.Refresh(ctx)
	return err
}

// Refresh reloads the listing from the store.
func (l *Ledger) Refresh(ctx context.Context) ([]core.Transaction, error) {
	all, err := l.store.ListAll(ctx)
	if err != nil {
		l.logFailure(ctx, applog.OpList, err)
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	l.listing = all
	return l.Listing(), nil
}

// Listing returns the transactions currently on display.
func (l *Ledger) Listing() []core.Transaction {
	return append([]core.Transaction(nil), l.listing...)
}

// Submit validates the form and, if every rule passes, records a new
// transaction. A *core.ValidationError means nothing was written.
func (l *Ledger) Submit(ctx context.Context, form core.Form) (core.Transaction, error) {
	draft, err := core.ValidateInput(form)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			l.logger.DebugContext(ctx, "Transaction rejected",
				applog.NewFields().
					WithOperation(applog.OpValidate).
					WithErrorType(applog.ErrorTypeValidation).
					WithReason(ve.Reason.String()).
					ToSlice()...)
		}
		return core.Transaction{}, err
	}

	created, err := l.store.Insert(ctx, draft)
	if err != nil {
		l.logFailure(ctx, applog.OpCreate, err)
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	l.listing = append(l.listing, created)

	fields := applog.NewFields().
		WithOperation(applog.OpCreate).
		WithTransaction(created.ID, created.Amount.String(), created.Category, created.Date.String())
	l.logger.InfoContext(ctx, "Transaction committed", fields.ToSlice()...)

	return created, nil
}

// Summary returns the spending distribution by category.
func (l *Ledger) Summary(ctx context.Context) (core.Distribution, error) {
	sums, err := l.store.SumByCategory(ctx)
	if err != nil {
		l.logFailure(ctx, applog.OpSummary, err)
		return core.Distribution{}, fmt.Errorf("summarize transactions: %w", err)
	}
	dist := core.NewDistribution(sums)
	if dist.IsEmpty() {
		return core.Distribution{}, core.ErrNothingToSummarize
	}
	return dist, nil
}

// Export writes every stored transaction to the export path, replacing any
// earlier export.
func (l *Ledger) Export(ctx context.Context) (ExportResult, error) {
	all, err := l.store.ListAll(ctx)
	if err != nil {
		l.logFailure(ctx, applog.OpExport, err)
		return ExportResult{}, fmt.Errorf("load transactions: %w", err)
	}
	if len(all) == 0 {
		return ExportResult{}, core.ErrNothingToExport
	}

	if err := export.WriteFile(l.exportPath, all); err != nil {
		l.exportLog.ErrorContext(ctx, "Export failed", failureFields(applog.OpExport, err).ToSlice()...)
		return ExportResult{}, err
	}

	l.exportLog.InfoContext(ctx, "Transactions exported",
		applog.NewFields().WithOperation(applog.OpExport).WithPath(l.exportPath).WithCount(int64(len(all))).ToSlice()...)

	return ExportResult{Path: l.exportPath, Rows: len(all)}, nil
}

// Reset deletes every transaction once the user confirms. Declining leaves
// both the store and the listing as they were.
func (l *Ledger) Reset(ctx context.Context, confirm Confirmer) (ResetResult, error) {
	ok, err := confirm.Confirm(ResetTitle, ResetMessage)
	if err != nil {
		return ResetResult{}, fmt.Errorf("confirm reset: %w", err)
	}
	if !ok {
		return ResetResult{}, nil
	}

	removed, err := l.store.ClearAll(ctx)
	if err != nil {
		l.logFailure(ctx, applog.OpReset, err)
		return ResetResult{}, fmt.Errorf("clear transactions: %w", err)
	}
	l.listing = nil

	l.logger.InfoContext(ctx, "All transactions cleared",
		applog.NewFields().WithOperation(applog.OpReset).WithCount(removed).ToSlice()...)

	return ResetResult{Confirmed: true, Removed: removed}, nil
}

// ExportPath is where Export writes.
func (l *Ledger) ExportPath() string {
	return l.exportPath
}

func (l *Ledger) logFailure(ctx context.Context, op string, err error) {
	l.logger.ErrorContext(ctx, "Ledger operation failed", failureFields(op, err).ToSlice()...)
}

func failureFields(op string, err error) applog.LogFields {
	fields := applog.NewFields().WithOperation(op).WithError(err)
	var exportErr *export.Error
	switch {
	case errors.Is(err, core.ErrConstraintViolation):
		fields.WithErrorType(applog.ErrorTypeConstraint)
	case errors.Is(err, core.ErrStorageUnavailable):
		fields.WithErrorType(applog.ErrorTypeDatabase)
	case errors.As(err, &exportErr):
		fields.WithErrorType(applog.ErrorTypeIO)
	}
	return fields
}
