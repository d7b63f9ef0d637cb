package console

import (
	"fmt"
	"io"
	"math"
	"strings"

	"ledger/internal/core"
)

const (
	chartTitle = "Spending Distribution"
	chartWidth = 40
)

// RenderListing writes one "date | amount | category | description" line
// per transaction.
func RenderListing(w io.Writer, transactions []core.Transaction) {
	if len(transactions) == 0 {
		fmt.Fprintln(w, "(no transactions)")
		return
	}
	for _, t := range transactions {
		fmt.Fprintln(w, t.Row())
	}
}

// RenderDistribution draws a proportional bar per category, labelled with
// the category name and its share to one decimal place.
func RenderDistribution(w io.Writer, dist core.Distribution) {
	fmt.Fprintln(w, chartTitle)

	nameWidth := 0
	for _, s := range dist.Slices {
		if n := len(s.Label()); n > nameWidth {
			nameWidth = n
		}
	}

	for _, s := range dist.Slices {
		bar := int(math.Round(s.Share / 100 * chartWidth))
		if bar == 0 && s.Share > 0 {
			bar = 1
		}
		fmt.Fprintf(w, "%-*s %s%s %s\n",
			nameWidth, s.Label(),
			strings.Repeat("#", bar), strings.Repeat(".", chartWidth-bar),
			s.Amount.StringFixed(2))
	}
	fmt.Fprintf(w, "%-*s %s %s\n", nameWidth, "Total", strings.Repeat(" ", chartWidth), dist.Total.StringFixed(2))
}
