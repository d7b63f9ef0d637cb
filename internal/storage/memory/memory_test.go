package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func tx(amount, category, description string) core.NewTransaction {
	return core.NewTransaction{
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
	}
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(func() time.Time { return time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC) })

	got, err := s.Insert(ctx, tx("12.50", "Food", "Lunch"))
	if err != nil || got.ID != 1 {
		t.Fatalf("unexpected insert: tx=%+v err=%v", got, err)
	}
	if got.Date.String() != "2025-05-04" {
		t.Fatalf("expected clock date, got %s", got.Date)
	}

	all, err := s.ListAll(ctx)
	if err != nil || len(all) != 1 || all[0].Description != "Lunch" {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}
}

func TestMemoryStoreSumAndClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, in := range []core.NewTransaction{tx("10", "Food", "a"), tx("5", "Food", "b"), tx("20", "Rent", "c")} {
		if _, err := s.Insert(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sums, _ := s.SumByCategory(ctx)
	if len(sums) != 2 || !sums["Food"].Equal(decimal.NewFromInt(15)) || !sums["Rent"].Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected sums: %v", sums)
	}

	removed, err := s.ClearAll(ctx)
	if err != nil || removed != 3 {
		t.Fatalf("unexpected clear: removed=%d err=%v", removed, err)
	}

	fresh, _ := s.Insert(ctx, tx("1", "Other", "d"))
	if fresh.ID != 4 {
		t.Fatalf("expected id 4 after clear, got %d", fresh.ID)
	}
}

func TestMemoryStoreRejectsInvalidRows(t *testing.T) {
	s := New()
	_, err := s.Insert(context.Background(), tx("0", "Food", "zero"))
	if !errors.Is(err, core.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := New()
	_ = s.Close()
	if _, err := s.ListAll(context.Background()); !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
