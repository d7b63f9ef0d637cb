// Package export writes the transaction listing to a delimited text file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"ledger/internal/core"
)

// DefaultPath is the well-known export location, relative to the working
// directory.
const DefaultPath = "transactions.csv"

// Header names the exported columns, in order.
var Header = []string{"ID", "Amount", "Category", "Description", "Date"}

// Error reports a failed write to the export file.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export to %s failed (%s): %v", e.Path, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WriteCSV encodes a header row followed by one row per transaction.
func WriteCSV(w io.Writer, transactions []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range transactions {
		if err := cw.Write(Record(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record renders every field of t as a CSV row.
func Record(t core.Transaction) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Amount.String(),
		t.Category,
		t.Description,
		t.Date.String(),
	}
}

// WriteFile replaces the file at path with the CSV rendering of transactions.
// The data is written to a temporary file next to path and renamed into
// place, so a failed export leaves any previous file untouched.
func WriteFile(path string, transactions []core.Transaction) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &Error{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, transactions); err != nil {
		tmp.Close()
		return &Error{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &Error{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &Error{Path: path, Op: "rename", Err: err}
	}
	return nil
}
