// internal/dataset/csv.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when parsing date cells. Input files come
// from several upstream exports, so the parser is deliberately tolerant.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// DateLayout is the canonical layout used for every written date column.
const DateLayout = "2006-01-02"

// ParseDate parses a date cell against the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// table is a fully materialized CSV file with a header index.
type table struct {
	path   string
	header []string
	index  map[string]int
	rows   [][]string
}

// readTable loads a CSV file and validates that every required column is
// present, failing fast on schema drift rather than producing empty output.
func readTable(path string, required ...string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	t := &table{
		path:   path,
		header: records[0],
		index:  make(map[string]int, len(records[0])),
		rows:   records[1:],
	}
	for i, h := range t.header {
		t.index[normalizeColumnName(h)] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.index[normalizeColumnName(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing required columns %v", path, missing)
	}

	return t, nil
}

func (t *table) get(row []string, col string) string {
	idx, ok := t.index[normalizeColumnName(col)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) getInt(row []string, col string) int {
	v := t.get(row, col)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func (t *table) getInt64(row []string, col string) int64 {
	v := t.get(row, col)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int64(f)
	}
	return 0
}

func (t *table) getFloat(row []string, col string) float64 {
	v := t.get(row, col)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func (t *table) getDecimal(row []string, col string) decimal.Decimal {
	v := t.get(row, col)
	if v == "" {
		return decimal.Zero
	}
	v = strings.ReplaceAll(v, ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (t *table) getNullDecimal(row []string, col string) decimal.NullDecimal {
	v := t.get(row, col)
	if v == "" {
		return decimal.NullDecimal{}
	}
	v = strings.ReplaceAll(v, ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func (t *table) getBool(row []string, col string) bool {
	v := strings.ToLower(t.get(row, col))
	return v == "true" || v == "1"
}

// writeTable writes a CSV file atomically enough for batch re-runs: the
// snapshot is replaced in place, matching the whole-table lifecycle.
func writeTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			file.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func formatNullDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
