package rebuild

import (
	"fmt"
	"strings"

	"github.com/mistakia/finance-sub001/internal/holdings"
)

// Markdown renders the rebuild result as a markdown report: a summary, the
// discrepancy table and the holdings written.
func (r *Result) Markdown() string {
	var b strings.Builder

	b.WriteString("# Holdings rebuild\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	if r.AsOf != "" {
		fmt.Fprintf(&b, "- As of: %s\n", r.AsOf)
	} else {
		b.WriteString("- As of: all transactions\n")
	}
	fmt.Fprintf(&b, "- Holdings written: %d\n", r.HoldingsCount)
	fmt.Fprintf(&b, "- Assertions checked: %d\n\n", r.AssertionsChecked)

	b.WriteString("## Reconciliation\n\n")
	switch {
	case r.AssertionsChecked == 0:
		b.WriteString("No balance assertions.\n\n")
	case len(r.Discrepancies) == 0:
		b.WriteString("All balance assertions match computed holdings.\n\n")
	default:
		fmt.Fprintf(&b, "%d discrepancies found.\n\n", len(r.Discrepancies))
		b.WriteString("| Link | Symbol | Computed | Asserted | Diff |\n")
		b.WriteString("|---|---|--:|--:|--:|\n")
		for _, d := range r.Discrepancies {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n", d.Link, d.Symbol, d.Computed, d.Asserted, d.Diff)
		}
		b.WriteString("\n")
	}

	if len(r.Holdings) > 0 {
		b.WriteString("## Holdings\n\n")
		b.WriteString("| Link | Symbol | Quantity |\n")
		b.WriteString("|---|---|--:|\n")
		for _, h := range r.Holdings {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", h.Link, h.Symbol, holdings.FormatQuantity(h.Quantity, h.Symbol))
		}
	}
	return b.String()
}
