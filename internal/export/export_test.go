package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	importutil "github.com/GustavoCaso/spendtrace/internal/import"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/testutil"
)

func TestCSV(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	transactions := []storage.Transaction{
		storage.NewTransaction(1, "Restaurant, Downtown", decimal.RequireFromString("50"), date, 1, "food", nil),
		storage.NewTransaction(2, "Uber", decimal.RequireFromString("-3.5"), date.AddDate(0, 0, 1), 2, "transport", nil),
	}

	var buf bytes.Buffer
	if err := CSV(&buf, transactions); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	want := "date,vendor,category,amount\n" +
		"2024-01-15,\"Restaurant, Downtown\",food,50.00\n" +
		"2024-01-16,Uber,transport,-3.50\n"
	if buf.String() != want {
		t.Errorf("CSV() = %q, want %q", buf.String(), want)
	}
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, nil); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	if buf.String() != "date,vendor,category,amount\n" {
		t.Errorf("CSV() = %q, want header only", buf.String())
	}
}

func TestCSVCanBeImportedAgain(t *testing.T) {
	stor := testutil.SetupTestStorage(t)
	logger := testutil.TestLogger(t)
	ctx := context.Background()

	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	transactions := []storage.Transaction{
		storage.NewTransaction(0, "Bakery", decimal.RequireFromString("2.40"), date, 0, "food", nil),
		storage.NewTransaction(0, "Metro", decimal.RequireFromString("1.50"), date, 0, "transport", nil),
	}

	var buf bytes.Buffer
	if err := CSV(&buf, transactions); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	info, err := importutil.Import(ctx, "export.csv", strings.NewReader(buf.String()), int64(buf.Len()), stor, logger)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if info.TotalImports != 2 || len(info.Rejected) != 0 {
		t.Errorf("Import() = %d imported, %d rejected; want 2, 0", info.TotalImports, len(info.Rejected))
	}

	if !info.Summary.TotalSpent.Equal(decimal.RequireFromString("3.90")) {
		t.Errorf("TotalSpent = %v, want 3.90", info.Summary.TotalSpent)
	}
}
