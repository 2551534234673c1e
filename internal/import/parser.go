package importutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
)

// Columns every upload must provide. Header matching ignores case and
// surrounding whitespace; any other column is ignored.
var requiredColumns = []string{"date", "vendor", "category", "amount"}

// ParsedData represents the raw data extracted from a file.
type ParsedData struct {
	Headers []string   // Normalized column headers
	Rows    [][]string // Data rows (all values as strings)
	Format  string
}

// csvRow is a single data row decoded by header name.
type csvRow struct {
	Date     string `csv:"date"`
	Vendor   string `csv:"vendor"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
}

// ParseFile parses an uploaded file and extracts headers and rows.
func ParseFile(filename string, reader io.Reader) (*ParsedData, error) {
	fileFormat := strings.ToLower(path.Ext(filename))

	switch fileFormat {
	case ".csv":
		return parseCSV(reader)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", fileFormat)
	}
}

func parseCSV(reader io.Reader) (*ParsedData, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	// Ragged rows are rejected one by one in Normalize.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, errors.New("CSV file is empty")
	}

	headers := normalizeHeaders(records[0])
	rows := records[1:]

	if len(rows) == 0 {
		return nil, errors.New("CSV file has no data rows")
	}

	parsed := &ParsedData{
		Headers: headers,
		Rows:    rows,
		Format:  "csv",
	}

	if missing := parsed.missingColumns(); len(missing) > 0 {
		return nil, fmt.Errorf("CSV file is missing required columns: %s", strings.Join(missing, ", "))
	}

	return parsed, nil
}

func normalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimPrefix(header, "\ufeff")
		normalized[i] = strings.ToLower(strings.TrimSpace(header))
	}
	return normalized
}

func (p *ParsedData) missingColumns() []string {
	missing := []string{}
	for _, column := range requiredColumns {
		if !slices.Contains(p.Headers, column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// GetTotalRows returns the total number of data rows.
func (p *ParsedData) GetTotalRows() int {
	return len(p.Rows)
}

// fieldCountMismatch reports whether the data row at index i has a different
// number of fields than the header.
func (p *ParsedData) fieldCountMismatch(i int) bool {
	return len(p.Rows[i]) != len(p.Headers)
}

// decode maps every data row onto the required columns by header name.
// Ragged rows are padded or cut to the header width so they decode in place.
func (p *ParsedData) decode() ([]csvRow, error) {
	records := make([][]string, 0, len(p.Rows)+1)
	records = append(records, p.Headers)
	for _, row := range p.Rows {
		if len(row) != len(p.Headers) {
			fitted := make([]string, len(p.Headers))
			copy(fitted, row)
			row = fitted
		}
		records = append(records, row)
	}

	rows := []csvRow{}
	if err := gocsv.UnmarshalCSV(&recordsReader{records: records}, &rows); err != nil {
		return nil, fmt.Errorf("error decoding CSV rows: %w", err)
	}

	return rows, nil
}

// recordsReader serves already parsed records to gocsv.
type recordsReader struct {
	records [][]string
	next    int
}

func (r *recordsReader) Read() ([]string, error) {
	if r.next >= len(r.records) {
		return nil, io.EOF
	}

	record := r.records[r.next]
	r.next++
	return record, nil
}

func (r *recordsReader) ReadAll() ([][]string, error) {
	remaining := r.records[r.next:]
	r.next = len(r.records)
	return remaining, nil
}
