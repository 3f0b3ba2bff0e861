package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"jewelry-admin/internal/listing"
)

func newTable(out io.Writer, header ...string) *tabwriter.Writer {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, strings.Join(header, "\t"))
	return writer
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

func formatOptional(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(places)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// pageFooter prints "page 1/3, 25 rows" followed by the stat cards.
func pageFooter[T any](out io.Writer, page listing.Page[T], stats listing.Stats, order ...string) {
	fmt.Fprintf(out, "page %d/%d, %d rows\n", page.Number, page.TotalPages, page.TotalItems)
	if len(order) == 0 {
		return
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%s=%s", name, stats.Get(name).String()))
	}
	fmt.Fprintln(out, strings.Join(parts, "  "))
}
