// Package console is the terminal front end of the ledger. It turns user
// gestures into ledger calls and ledger results into printed output; it holds
// no transaction state of its own beyond the form being edited.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/services"
)

// Console reads answers from in and writes everything else to out.
type Console struct {
	ledger     *services.Ledger
	in         *bufio.Reader
	out        io.Writer
	categories []string

	// form survives a rejected submission so the user can correct it.
	form core.Form
}

func New(ledger *services.Ledger, in io.Reader, out io.Writer, categories []string) *Console {
	return &Console{
		ledger:     ledger,
		in:         bufio.NewReader(in),
		out:        out,
		categories: categories,
	}
}

// Form returns the values currently held in the entry form.
func (c *Console) Form() core.Form {
	return c.form
}

// Confirm asks a yes/no question; anything but y/yes is a no.
func (c *Console) Confirm(title, message string) (bool, error) {
	fmt.Fprintf(c.out, "%s: %s [y/N]: ", title, message)
	answer, err := c.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Add submits form. On success the amount and description are cleared and
// the category is kept for the next entry; on rejection everything is kept.
func (c *Console) Add(ctx context.Context, form core.Form) error {
	c.form = form
	created, err := c.ledger.Submit(ctx, form)
	if err != nil {
		c.report(err)
		return err
	}
	c.form.Amount = ""
	c.form.Description = ""
	c.form.Date = ""
	fmt.Fprintf(c.out, "Added #%d: %s\n", created.ID, created.Row())
	return nil
}

// List prints every stored transaction.
func (c *Console) List(ctx context.Context) error {
	all, err := c.ledger.Refresh(ctx)
	if err != nil {
		c.report(err)
		return err
	}
	RenderListing(c.out, all)
	return nil
}

// Summary prints the spending distribution, or a notice when there is none.
func (c *Console) Summary(ctx context.Context) error {
	dist, err := c.ledger.Summary(ctx)
	if err != nil {
		c.report(err)
		if errors.Is(err, core.ErrNothingToSummarize) {
			return nil
		}
		return err
	}
	RenderDistribution(c.out, dist)
	return nil
}

// Export writes the CSV file and reports where it went.
func (c *Console) Export(ctx context.Context) error {
	res, err := c.ledger.Export(ctx)
	if err != nil {
		c.report(err)
		if errors.Is(err, core.ErrNothingToExport) {
			return nil
		}
		return err
	}
	fmt.Fprintf(c.out, "Success: Data exported to %s (%d rows)\n", res.Path, res.Rows)
	return nil
}

// Reset clears all data after the user confirms. A declined prompt prints
// nothing further.
func (c *Console) Reset(ctx context.Context) error {
	res, err := c.ledger.Reset(ctx, c)
	if err != nil {
		c.report(err)
		return err
	}
	if res.Confirmed {
		fmt.Fprintf(c.out, "Reset Complete: All data has been cleared (%d removed).\n", res.Removed)
	}
	return nil
}

// Categories prints the suggestion list, numbered for the interactive form.
func (c *Console) Categories() {
	for i, name := range c.categories {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, name)
	}
}

// report prints a user-facing message for err.
func (c *Console) report(err error) {
	var (
		ve        *core.ValidationError
		exportErr *export.Error
	)
	switch {
	case errors.As(err, &ve):
		fmt.Fprintf(c.out, "Error: %s\n", ve.Error())
	case errors.Is(err, core.ErrNothingToSummarize):
		fmt.Fprintln(c.out, "Info: No transactions to summarize.")
	case errors.Is(err, core.ErrNothingToExport):
		fmt.Fprintln(c.out, "Info: No data to export")
	case errors.As(err, &exportErr):
		fmt.Fprintf(c.out, "Error: Could not write %s: %v\n", exportErr.Path, exportErr.Err)
	case errors.Is(err, core.ErrConstraintViolation):
		fmt.Fprintln(c.out, "Error: The transaction was refused by the database consistency checks and was not saved.")
	case errors.Is(err, core.ErrStorageUnavailable):
		fmt.Fprintf(c.out, "Error: The ledger database is unavailable: %v\n", err)
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	return strings.TrimSpace(line), err
}

// pickCategory maps a 1-based suggestion number to its name; any other input
// is taken as a free-text category.
func (c *Console) pickCategory(input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(c.categories) {
		return c.categories[n-1]
	}
	return input
}
