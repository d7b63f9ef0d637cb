package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Reason identifies which input rule rejected a form.
type Reason int

const (
	InvalidAmount Reason = iota + 1
	MissingCategory
	MissingDescription
	InvalidDate
)

const (
	amountNotANumber  = "not a number"
	amountNotPositive = "must be greater than 0"
)

func (r Reason) String() string {
	switch r {
	case InvalidAmount:
		return "invalid_amount"
	case MissingCategory:
		return "missing_category"
	case MissingDescription:
		return "missing_description"
	case InvalidDate:
		return "invalid_date"
	default:
		return "unknown"
	}
}

// ValidationError is the rejection outcome of ValidateInput.
type ValidationError struct {
	Reason Reason
	Detail string
}

func newValidationError(r Reason, detail string) *ValidationError {
	return &ValidationError{Reason: r, Detail: detail}
}

// Error returns the user-facing message for the failed rule.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case InvalidAmount:
		return "Invalid amount: " + e.Detail
	case MissingCategory:
		return "Category is required"
	case MissingDescription:
		return "Description cannot be empty"
	case InvalidDate:
		return "Invalid date: " + e.Detail
	default:
		return "Invalid input"
	}
}

// Form is raw, unvalidated user input. Date is optional.
type Form struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// ValidateInput applies the input rules in order and stops at the first
// failure. On success the returned draft is ready for a store insert.
func ValidateInput(f Form) (NewTransaction, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return NewTransaction{}, err
	}

	category := strings.TrimSpace(f.Category)
	if category == "" {
		return NewTransaction{}, newValidationError(MissingCategory, "")
	}

	description := strings.TrimSpace(f.Description)
	if description == "" {
		return NewTransaction{}, newValidationError(MissingDescription, "")
	}

	var date Date
	if strings.TrimSpace(f.Date) != "" {
		date, err = ParseDate(f.Date)
		if err != nil {
			return NewTransaction{}, newValidationError(InvalidDate, fmt.Sprintf("expected %s", DateLayout))
		}
	}

	return NewTransaction{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	}, nil
}

// ParseAmount parses a free-text amount. Surrounding whitespace is ignored and
// exponent notation is accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, newValidationError(InvalidAmount, amountNotANumber)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, newValidationError(InvalidAmount, amountNotANumber)
	}
	if err := checkAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkAmount applies the amount rule to the value as it will be stored. The
// ledger keeps amounts as float64, so an amount that overflows is not a number
// and one that rounds to zero is not greater than 0.
func checkAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return newValidationError(InvalidAmount, amountNotPositive)
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return newValidationError(InvalidAmount, amountNotANumber)
	}
	if f <= 0 {
		return newValidationError(InvalidAmount, amountNotPositive)
	}
	return nil
}
