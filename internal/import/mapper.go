package importutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

const (
	MaxVendorLength   = 155
	MaxCategoryLength = storage.MaxCategoryNameLength

	amountPlaces = 2
)

// Amounts are stored with at most 19 digits, two of them decimals.
var maxAmount = decimal.New(1, 17)

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// RowError describes why a data row was rejected. Row is 1-based and does not
// count the header.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// MappingResult holds the normalized rows ready to be stored and the rows
// that could not be normalized.
type MappingResult struct {
	Rows   []storage.ImportRow
	Errors []RowError
}

// Normalize decodes every data row and cleans it up: vendor is trimmed,
// category trimmed and lowercased, amount rounded to cents and date coerced
// to a calendar date.
func Normalize(data *ParsedData) (*MappingResult, error) {
	rows, err := data.decode()
	if err != nil {
		return nil, err
	}

	result := &MappingResult{
		Rows:   make([]storage.ImportRow, 0, len(rows)),
		Errors: make([]RowError, 0),
	}

	for i, row := range rows {
		if data.fieldCountMismatch(i) {
			result.Errors = append(result.Errors, RowError{
				Row:     i + 1,
				Field:   "row",
				Message: fmt.Sprintf("expected %d fields, got %d", len(data.Headers), len(data.Rows[i])),
			})
			continue
		}

		importRow, rowErr := normalizeRow(row)
		if rowErr != nil {
			rowErr.Row = i + 1
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Rows = append(result.Rows, importRow)
	}

	return result, nil
}

func normalizeRow(row csvRow) (storage.ImportRow, *RowError) {
	vendor := strings.TrimSpace(row.Vendor)
	if vendor == "" {
		return storage.ImportRow{}, &RowError{Field: "vendor", Message: "this field may not be blank"}
	}
	if len([]rune(vendor)) > MaxVendorLength {
		return storage.ImportRow{}, &RowError{
			Field:   "vendor",
			Message: fmt.Sprintf("ensure this field has no more than %d characters", MaxVendorLength),
		}
	}

	category := strings.ToLower(strings.TrimSpace(row.Category))
	if category == "" {
		return storage.ImportRow{}, &RowError{Field: "category", Message: "this field may not be blank"}
	}
	if len([]rune(category)) > MaxCategoryLength {
		return storage.ImportRow{}, &RowError{
			Field:   "category",
			Message: fmt.Sprintf("ensure this field has no more than %d characters", MaxCategoryLength),
		}
	}

	amount, err := ParseAmount(row.Amount)
	if err != nil {
		return storage.ImportRow{}, &RowError{Field: "amount", Message: err.Error()}
	}

	date, err := ParseDate(row.Date)
	if err != nil {
		return storage.ImportRow{}, &RowError{Field: "date", Message: err.Error()}
	}

	return storage.ImportRow{
		Vendor:   vendor,
		Amount:   amount,
		Date:     date,
		Category: category,
	}, nil
}

// ParseDate coerces dateStr into a UTC calendar date using the accepted
// layouts in order.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, errors.New("date is required")
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date %q", dateStr)
}

// ParseAmount parses an amount that may carry a currency symbol, thousands
// separators or accounting parentheses for negatives.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" {
		return decimal.Zero, errors.New("amount is required")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}

	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '$', '€', '£', '¥':
			return -1
		}
		return r
	}, cleaned)

	if !util.IsPlainDecimal(cleaned) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", amountStr)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", amountStr)
	}

	if negative {
		amount = amount.Neg()
	}

	amount = amount.Round(amountPlaces)
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("amount %q has too many digits", amountStr)
	}

	return amount, nil
}
