package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and on-screen representation of a Date.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without a time of day.
	Date struct {
		time.Time
	}

	// Transaction is one recorded financial event as persisted by a store.
	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
	}

	// NewTransaction is the input to a store insert. A zero Date means
	// "today" and is resolved by the store.
	NewTransaction struct {
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
	}
)

var (
	// ErrStorageUnavailable means the database could not be opened, read or
	// written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConstraintViolation means the store refused a row that breaks the
	// schema rules.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNothingToSummarize is returned by a summary over an empty ledger.
	ErrNothingToSummarize = errors.New("no transactions to summarize")
	// ErrNothingToExport is returned by an export over an empty ledger.
	ErrNothingToExport = errors.New("no data to export")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Equal compares calendar dates only.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

// Validate checks the invariants every persisted transaction satisfies.
func (t NewTransaction) Validate() error {
	if err := checkAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return newValidationError(MissingCategory, "")
	}
	if strings.TrimSpace(t.Description) == "" {
		return newValidationError(MissingDescription, "")
	}
	return nil
}

// Row renders the transaction as shown in the listing.
func (t Transaction) Row() string {
	return fmt.Sprintf("%s | %s | %s | %s", t.Date, t.Amount.String(), t.Category, t.Description)
}
