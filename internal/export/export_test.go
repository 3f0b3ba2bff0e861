package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jewelry-admin/internal/adminapi"
)

func products() []adminapi.Product {
	return []adminapi.Product{
		{ID: 1, Name: "Ring", SKU: "R-1", Price: decimal.RequireFromString("1200.50"), Stock: 2, Image: "ring.png"},
		{ID: 2, Name: "Chain, gold", SKU: "C-2", Price: decimal.RequireFromString("800"), Stock: 0},
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "products-2024-03-09.xlsx", FileName("products", at, FormatXLSX))
	assert.Equal(t, "users-2024-03-09.csv", FileName("users", at, FormatCSV))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	cols := ProductColumns[:3]
	require.NoError(t, WriteCSV(&buf, cols, products()))

	assert.Equal(t, "ID,Name,SKU\n1,Ring,R-1\n2,\"Chain, gold\",C-2\n", buf.String())
}

func TestWriteXLSXSetsWidths(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, EntityProducts, ProductColumns, products(), 18))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{EntityProducts}, f.GetSheetList())

	width, err := f.GetColWidth(EntityProducts, "A")
	require.NoError(t, err)
	assert.Equal(t, 8.0, width)

	// SKU 列没有显式宽度，使用默认值
	width, err = f.GetColWidth(EntityProducts, "C")
	require.NoError(t, err)
	assert.Equal(t, 18.0, width)

	name, err := f.GetCellValue(EntityProducts, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ring", name)

	image, err := f.GetCellValue(EntityProducts, "J2")
	require.NoError(t, err)
	assert.Equal(t, "ring.png", image)
}

func TestExporterWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	e := New(Options{Dir: filepath.Join(dir, "out"), Format: "CSV"}, zerolog.Nop())
	e.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }

	path, err := Write(e, EntityProducts, ProductColumns, products())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "products-2024-01-02.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Stock Value")
	assert.Contains(t, string(data), "2401")
}

func TestWriteFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	e := New(Options{Dir: dir, Format: "ods"}, zerolog.Nop())
	e.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }

	path, err := Write(e, EntityProducts, ProductColumns, products())
	require.ErrorContains(t, err, "unsupported export format")
	assert.Empty(t, path)

	// 写入失败时不能留下半截文件
	_, statErr := os.Stat(filepath.Join(dir, "products-2024-01-02.ods"))
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRateColumnsDeriveChange(t *testing.T) {
	stale := decimal.RequireFromString("99")
	rates := []adminapi.MetalRate{
		{Metal: "gold", CurrentPrice: decimal.RequireFromString("1000"), PredictedPrice: decimal.RequireFromString("1125.555"), ChangePercent: &stale},
		{Metal: "silver", CurrentPrice: decimal.Zero, PredictedPrice: decimal.RequireFromString("10"), ChangePercent: &stale},
	}
	cols := []Column[adminapi.MetalRate]{RateColumns[0], RateColumns[len(RateColumns)-1]}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cols, rates))
	// 当前价为正时使用派生值，否则回退到存储值
	assert.Equal(t, "Metal,Change %\ngold,12.56\nsilver,99\n", buf.String())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b", sheetName("a/b"))
	assert.Len(t, sheetName("this-entity-name-is-longer-than-thirty-one"), 31)
}
