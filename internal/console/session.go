package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const help = `Commands:
  add        enter a new transaction
  list       show all transactions
  summary    show spending by category
  export     write all transactions to CSV
  reset      delete all transactions
  categories show suggested categories
  help       show this message
  quit       leave`

// Run drives an interactive session until the user quits, input ends or ctx
// is cancelled. Failures of individual actions are reported and the session
// continues, except when the initial listing cannot be loaded.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Expense Tracker")
	if err := c.List(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, help)

	for ctx.Err() == nil {
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		switch strings.ToLower(line) {
		case "":
		case "add", "a":
			if err := c.promptAdd(ctx); errors.Is(err, io.EOF) {
				return nil
			}
		case "list", "l":
			_ = c.List(ctx)
		case "summary", "s":
			_ = c.Summary(ctx)
		case "export", "e":
			_ = c.Export(ctx)
		case "reset":
			_ = c.Reset(ctx)
		case "categories", "c":
			c.Categories()
		case "help", "h", "?":
			fmt.Fprintln(c.out, help)
		case "quit", "exit", "q":
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown command %q, type help for a list\n", line)
		}

		if eof {
			return nil
		}
	}
	return nil
}

// promptAdd fills the form field by field. Pressing enter keeps the value
// shown in brackets, which is how a rejected entry gets corrected.
func (c *Console) promptAdd(ctx context.Context) error {
	form := c.form
	var err error

	if form.Amount, err = c.prompt("Amount", form.Amount); err != nil {
		return err
	}

	suggestions := make([]string, len(c.categories))
	for i, name := range c.categories {
		suggestions[i] = fmt.Sprintf("%d=%s", i+1, name)
	}
	fmt.Fprintf(c.out, "Suggested: %s\n", strings.Join(suggestions, ", "))
	category, err := c.prompt("Category", form.Category)
	if err != nil {
		return err
	}
	form.Category = c.pickCategory(category)

	if form.Description, err = c.prompt("Description", form.Description); err != nil {
		return err
	}
	if form.Date, err = c.prompt("Date (YYYY-MM-DD, empty for today)", form.Date); err != nil {
		return err
	}

	return c.Add(ctx, form)
}

func (c *Console) prompt(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.readLine()
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return current, err
		}
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}
