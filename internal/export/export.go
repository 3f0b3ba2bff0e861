// Package export writes list pages and rate history to .xlsx or .csv files
// named entity-YYYY-MM-DD.ext.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DefaultColumnWidth is used when neither the column nor Options sets one.
const DefaultColumnWidth = 18

const dateLayout = "2006-01-02"

// Column describes one exported column.
type Column[T any] struct {
	Header string
	// Width in spreadsheet character units; 0 means Options.ColumnWidth.
	Width float64
	Value func(T) any
}

// Options parameterise the exporter.
type Options struct {
	Dir         string
	Format      string
	ColumnWidth int
}

// Exporter writes files under Options.Dir.
type Exporter struct {
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs an exporter.
func New(opts Options, logger zerolog.Logger) *Exporter {
	opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
	if opts.Format == "" {
		opts.Format = FormatXLSX
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	return &Exporter{
		opts:   opts,
		logger: logger.With().Str("component", "export").Logger(),
		now:    time.Now,
	}
}

// FileName returns "entity-YYYY-MM-DD.format".
func FileName(entity string, at time.Time, format string) string {
	return fmt.Sprintf("%s-%s.%s", entity, at.Format(dateLayout), format)
}

// Write exports rows as entity into the configured directory and returns
// the written path.
func Write[T any](e *Exporter, entity string, columns []Column[T], rows []T) (string, error) {
	if len(columns) == 0 {
		return "", errors.New("export requires at least one column")
	}

	path := filepath.Join(e.opts.Dir, FileName(entity, e.now(), e.opts.Format))
	if err := ensureDir(path); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}

	switch e.opts.Format {
	case FormatXLSX:
		err = WriteXLSX(file, entity, columns, rows, float64(e.opts.ColumnWidth))
	case FormatCSV:
		err = WriteCSV(file, columns, rows)
	default:
		err = fmt.Errorf("unsupported export format %q", e.opts.Format)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	if err != nil {
		// a partial file must not look like a finished export
		if rerr := os.Remove(path); rerr != nil {
			e.logger.Warn().Err(rerr).Str("path", path).Msg("remove partial export failed")
		}
		return "", err
	}

	e.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("export written")
	return path, nil
}

// WriteXLSX renders a single-sheet workbook. Every column gets an explicit
// width.
func WriteXLSX[T any](w io.Writer, sheet string, columns []Column[T], rows []T, defaultWidth float64) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(sheet)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.Header

		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := col.Width
		if width <= 0 {
			width = defaultWidth
		}
		if err := f.SetColWidth(name, letter, letter, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = xlsxValue(col.Value(row))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV renders rows with a header line.
func WriteCSV[T any](w io.Writer, columns []Column[T], rows []T) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Header
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = text(col.Value(row))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		return x.InexactFloat64()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case nil:
		return ""
	default:
		return v
	}
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		return x.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// sheetName trims to the 31 character limit and strips characters Excel
// rejects.
func sheetName(entity string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, entity)
	if name == "" {
		name = "Sheet1"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return nil
}
