// Package summary aggregates transaction records into spending insights.
package summary

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

const (
	topVendors = 5
	places     = 2
)

// Record is the minimal view of a transaction needed for aggregation.
type Record struct {
	Vendor   string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
}

// FromTransactions builds records from stored transactions.
func FromTransactions(transactions []storage.Transaction) []Record {
	records := make([]Record, 0, len(transactions))
	for _, transaction := range transactions {
		records = append(records, Record{
			Vendor:   transaction.Vendor(),
			Amount:   transaction.Amount(),
			Date:     transaction.Date(),
			Category: transaction.CategoryName(),
		})
	}
	return records
}

type Entry struct {
	Name   string
	Amount decimal.Decimal
}

// Breakdown is a list of totals sorted by amount, largest first.
type Breakdown []Entry

// MarshalJSON encodes the breakdown as a JSON object whose keys keep the
// descending order of the entries.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, entry := range b {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(entry.Amount.StringFixed(places))
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Summary struct {
	TotalSpent          decimal.Decimal
	TransactionCount    int
	CategoryCount       int
	SpendingPerCategory Breakdown
	SpendingPerVendor   Breakdown
	TopVendors          Breakdown
	VendorCount         int
	FirstDate           *time.Time
	LastDate            *time.Time
}

type summaryJSON struct {
	TotalSpent          json.Number `json:"total_spent"`
	TransactionCount    int         `json:"transaction_count"`
	CategoryCount       int         `json:"category_count"`
	SpendingPerCategory Breakdown   `json:"spending_per_category"`
	SpendingPerVendor   Breakdown   `json:"spending_per_vendor"`
	TopVendors          Breakdown   `json:"top_vendors"`
	VendorCount         int         `json:"vendor_count"`
	FirstDate           *string     `json:"first_date"`
	LastDate            *string     `json:"last_date"`
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		TotalSpent:          json.Number(s.TotalSpent.StringFixed(places)),
		TransactionCount:    s.TransactionCount,
		CategoryCount:       s.CategoryCount,
		SpendingPerCategory: s.SpendingPerCategory,
		SpendingPerVendor:   s.SpendingPerVendor,
		TopVendors:          s.TopVendors,
		VendorCount:         s.VendorCount,
		FirstDate:           formatDate(s.FirstDate),
		LastDate:            formatDate(s.LastDate),
	})
}

func formatDate(date *time.Time) *string {
	if date == nil {
		return nil
	}

	formatted := util.FormatDate(*date)
	return &formatted
}

// Summarize computes totals, per-category and per-vendor breakdowns and the
// date range covered by records.
func Summarize(records []Record) Summary {
	total := decimal.Zero
	perCategory := map[string]decimal.Decimal{}
	perVendor := map[string]decimal.Decimal{}

	var first, last *time.Time

	for _, record := range records {
		total = total.Add(record.Amount)
		perCategory[record.Category] = perCategory[record.Category].Add(record.Amount)
		perVendor[record.Vendor] = perVendor[record.Vendor].Add(record.Amount)

		date := record.Date
		if first == nil || date.Before(*first) {
			first = &date
		}

		if last == nil || date.After(*last) {
			last = &date
		}
	}

	vendors := breakdown(perVendor)

	return Summary{
		TotalSpent:          total.Round(places),
		TransactionCount:    len(records),
		CategoryCount:       len(perCategory),
		SpendingPerCategory: breakdown(perCategory),
		SpendingPerVendor:   vendors,
		TopVendors:          vendors[:min(topVendors, len(vendors))],
		VendorCount:         len(perVendor),
		FirstDate:           first,
		LastDate:            last,
	}
}

func breakdown(totals map[string]decimal.Decimal) Breakdown {
	names := slices.Sorted(maps.Keys(totals))

	entries := make(Breakdown, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{Name: name, Amount: totals[name]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})

	return entries
}
