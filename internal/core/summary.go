package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
	// Share is the percentage of Distribution.Total, 0-100.
	Share float64
}

// Label renders the slice caption, e.g. "Food 42.9%".
func (c CategoryAmount) Label() string {
	return fmt.Sprintf("%s %.1f%%", c.Name, c.Share)
}

// Distribution is the spending split across categories.
type Distribution struct {
	Total  decimal.Decimal
	Slices []CategoryAmount
}

// NewDistribution turns grouped sums into proportional slices ordered by
// category name.
func NewDistribution(sums map[string]decimal.Decimal) Distribution {
	names := make([]string, 0, len(sums))
	total := decimal.Zero
	for name, amount := range sums {
		names = append(names, name)
		total = total.Add(amount)
	}
	sort.Strings(names)

	dist := Distribution{Total: total, Slices: make([]CategoryAmount, 0, len(names))}
	for _, name := range names {
		share := 0.0
		if total.IsPositive() {
			share = sums[name].Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		dist.Slices = append(dist.Slices, CategoryAmount{Name: name, Amount: sums[name], Share: share})
	}
	return dist
}

// IsEmpty reports whether there is anything to chart.
func (d Distribution) IsEmpty() bool {
	return len(d.Slices) == 0
}
