package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/export"
	applog "ledger/internal/log"
	"ledger/internal/storage"
	"ledger/internal/storage/memory"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Insert(ctx context.Context, t core.NewTransaction) (core.Transaction, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(core.Transaction), args.Error(1)
}

func (m *mockStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]core.Transaction)
	return txs, args.Error(1)
}

func (m *mockStore) SumByCategory(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	sums, _ := args.Get(0).(map[string]decimal.Decimal)
	return sums, args.Error(1)
}

func (m *mockStore) ClearAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type answer struct {
	yes   bool
	asked int
	title string
}

func (a *answer) Confirm(title, _ string) (bool, error) {
	a.asked++
	a.title = title
	return a.yes, nil
}

func newLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), export.DefaultPath)
	l := NewLedger(memory.New(), path, nil)
	require.NoError(t, l.Start(context.Background()))
	return l, path
}

func submit(t *testing.T, l *Ledger, amount, category, description string) core.Transaction {
	t.Helper()
	tx, err := l.Submit(context.Background(), core.Form{Amount: amount, Category: category, Description: description})
	require.NoError(t, err)
	return tx
}

func TestSubmitRejectsWithoutTouchingStore(t *testing.T) {
	cases := []struct {
		form   core.Form
		reason core.Reason
		detail string
	}{
		{core.Form{Amount: "abc", Category: "Food", Description: "lunch"}, core.InvalidAmount, "not a number"},
		{core.Form{Amount: "-5", Category: "Food", Description: "lunch"}, core.InvalidAmount, "must be greater than 0"},
		{core.Form{Amount: "1e400", Category: "Food", Description: "lunch"}, core.InvalidAmount, "not a number"},
		{core.Form{Amount: "1e-400", Category: "Food", Description: "lunch"}, core.InvalidAmount, "must be greater than 0"},
		{core.Form{Amount: "10", Category: "", Description: "lunch"}, core.MissingCategory, ""},
		{core.Form{Amount: "10", Category: "Food", Description: ""}, core.MissingDescription, ""},
	}

	store := &mockStore{}
	l := NewLedger(store, "", nil)

	for _, tc := range cases {
		_, err := l.Submit(context.Background(), tc.form)
		var ve *core.ValidationError
		require.True(t, errors.As(err, &ve), "expected validation error for %+v", tc.form)
		assert.Equal(t, tc.reason, ve.Reason)
		assert.Equal(t, tc.detail, ve.Detail)
	}

	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.Empty(t, l.Listing())
}

func TestSubmitRoundTrip(t *testing.T) {
	l, _ := newLedger(t)

	created := submit(t, l, "12.50", "Food", "Lunch")
	assert.NotZero(t, created.ID)

	listing := l.Listing()
	require.Len(t, listing, 1)
	assert.Equal(t, created, listing[0])

	reloaded, err := l.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.True(t, reloaded[0].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Food", reloaded[0].Category)
	assert.Equal(t, "Lunch", reloaded[0].Description)
	assert.Equal(t, core.DateOf(time.Now()).String(), reloaded[0].Date.String())
}

func TestSubmitStorageFailure(t *testing.T) {
	store := &mockStore{}
	store.On("Insert", mock.Anything, mock.Anything).
		Return(core.Transaction{}, errors.Join(core.ErrStorageUnavailable, errors.New("disk I/O error")))

	l := NewLedger(store, "", nil)
	_, err := l.Submit(context.Background(), core.Form{Amount: "1", Category: "Food", Description: "x"})

	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.Empty(t, l.Listing())
	store.AssertExpectations(t)
}

func TestSummary(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Summary(ctx)
	assert.ErrorIs(t, err, core.ErrNothingToSummarize)

	submit(t, l, "10", "Food", "a")
	submit(t, l, "5", "Food", "b")
	submit(t, l, "20", "Rent", "c")

	dist, err := l.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, dist.Slices, 2)
	assert.Equal(t, "Food", dist.Slices[0].Name)
	assert.True(t, dist.Slices[0].Amount.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "Rent", dist.Slices[1].Name)
	assert.True(t, dist.Slices[1].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, dist.Total.Equal(decimal.NewFromInt(35)))
}

func TestExportEmpty(t *testing.T) {
	l, path := newLedger(t)

	_, err := l.Export(context.Background())
	assert.ErrorIs(t, err, core.ErrNothingToExport)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be written for an empty store")
}

func TestExportFidelity(t *testing.T) {
	path := filepath.Join(t.TempDir(), export.DefaultPath)
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finance.db"))
	require.NoError(t, err)
	defer repo.Close()

	l := NewLedger(repo, path, nil)
	require.NoError(t, l.Start(context.Background()))

	first := submit(t, l, "12.50", "Food", "Lunch")
	second := submit(t, l, "900", "Rent", "Flat, March")

	res, err := l.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, path, res.Path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Amount", "Category", "Description", "Date"}, rows[0])
	for i, tx := range []core.Transaction{first, second} {
		assert.Equal(t, []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Amount.String(),
			tx.Category,
			tx.Description,
			tx.Date.String(),
		}, rows[i+1])
	}
}

func TestExportIOFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", export.DefaultPath)
	l := NewLedger(memory.New(), path, nil)
	submit(t, l, "1", "Food", "x")

	_, err := l.Export(context.Background())
	var exportErr *export.Error
	require.True(t, errors.As(err, &exportErr))

	all, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResetDeclined(t *testing.T) {
	l, _ := newLedger(t)
	submit(t, l, "10", "Food", "a")
	before := l.Listing()

	no := &answer{yes: false}
	res, err := l.Reset(context.Background(), no)
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.Equal(t, 1, no.asked)
	assert.Equal(t, ResetTitle, no.title)

	assert.Equal(t, before, l.Listing())
	all, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResetConfirmedNeverReusesIDs(t *testing.T) {
	l, _ := newLedger(t)
	submit(t, l, "10", "Food", "a")
	last := submit(t, l, "20", "Rent", "b")

	res, err := l.Reset(context.Background(), &answer{yes: true})
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, int64(2), res.Removed)
	assert.Empty(t, l.Listing())

	all, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	fresh := submit(t, l, "1", "Other", "c")
	assert.Greater(t, fresh.ID, last.ID)
}

func TestStartPropagatesStorageUnavailable(t *testing.T) {
	store := &mockStore{}
	store.On("Initialize", mock.Anything).Return(core.ErrStorageUnavailable)

	err := NewLedger(store, "", nil).Start(context.Background())
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
	store.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestSubmitOutOfRangeAmountKeepsSQLiteUsable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "finance.db")
	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	l := NewLedger(repo, filepath.Join(t.TempDir(), export.DefaultPath), nil)
	require.NoError(t, l.Start(ctx))

	for _, amount := range []string{"1e400", "1e-400"} {
		var err error
		require.NotPanics(t, func() {
			_, err = l.Submit(ctx, core.Form{Amount: amount, Category: "Food", Description: "x"})
		})
		var ve *core.ValidationError
		require.True(t, errors.As(err, &ve), "%s should be rejected by validation, got %v", amount, err)
		assert.Equal(t, core.InvalidAmount, ve.Reason)
	}

	submit(t, l, "1e308", "Food", "largest finite")
	require.NoError(t, l.Start(ctx))
	require.Len(t, l.Listing(), 1)

	res, err := l.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
}

func TestLogFieldsPerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Component: applog.ComponentApp, Output: &buf})
	l := NewLedger(memory.New(), filepath.Join(t.TempDir(), export.DefaultPath), logger)
	ctx := context.Background()
	require.NoError(t, l.Start(ctx))

	_, err := l.Submit(ctx, core.Form{Amount: "abc", Category: "Food", Description: "x"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "component=ledger")
	assert.Contains(t, buf.String(), "error_type=validation_error")
	assert.Contains(t, buf.String(), "reason=invalid_amount")

	buf.Reset()
	submit(t, l, "5", "Food", "x")
	_, err = l.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Transactions exported")
	assert.Contains(t, buf.String(), "component=export")
}
