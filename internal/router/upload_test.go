package router

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

const januaryCSV = `Date,Vendor,Category,Amount
2024-01-01,Starbucks,Coffee,4.50
2024-01-02,Shell,Fuel,60.00
2024-01-03,Starbucks,coffee,5.25
2024-01-04,Costa,Coffee,3.00
not-a-date,Shell,Fuel,10.00`

func TestUploadFlow(t *testing.T) {
	handler, _, publisher := setupRouter(t)

	w := uploadFile(t, handler, "january.csv", januaryCSV)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	// spending_summary keeps descending order, so inspect the raw body
	if !strings.Contains(w.Body.String(), `"spending_summary":{"fuel":60.00,"coffee":12.75}`) {
		t.Errorf("Unexpected spending summary in %s", w.Body.String())
	}

	created := decodeBody[struct {
		Message      string `json:"message"`
		UploadID     int64  `json:"upload_id"`
		RejectedRows []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
		} `json:"rejected_rows"`
	}](t, w)

	if created.Message != "4 number of Transactions were created from your uploaded file." {
		t.Errorf("Unexpected message: %v", created.Message)
	}

	if len(created.RejectedRows) != 1 || created.RejectedRows[0].Row != 5 || created.RejectedRows[0].Field != "date" {
		t.Errorf("Unexpected rejected rows: %+v", created.RejectedRows)
	}

	if len(publisher.messages) != 1 || publisher.messages[0].TotalSpent != "72.75" {
		t.Errorf("Expected one upload notification with total 72.75, got %+v", publisher.messages)
	}

	uploadPath := "/uploads/" + strconv.FormatInt(created.UploadID, 10)

	w = doRequest(t, handler, http.MethodGet, "/uploads", nil)
	list := decodeBody[map[string][]uploadResponse](t, w)
	if len(list["uploaded_files"]) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(list["uploaded_files"]))
	}

	upload := list["uploaded_files"][0]
	if upload.FileName != "january.csv" || upload.TransactionCount != 4 {
		t.Errorf("Unexpected upload: %+v", upload)
	}
	if upload.Summary != "http://example.com"+uploadPath+"/summary" {
		t.Errorf("summary url = %v", upload.Summary)
	}

	w = doRequest(t, handler, http.MethodGet, uploadPath, nil)
	if detail := decodeBody[uploadDetailResponse](t, w); len(detail.Transactions) != 4 {
		t.Errorf("Expected 4 nested transactions, got %d", len(detail.Transactions))
	}

	w = doRequest(t, handler, http.MethodGet, uploadPath+"/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK; got %v", w.Code)
	}

	var summary map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}

	checks := map[string]string{
		"total_spent":       "72.75",
		"transaction_count": "4",
		"category_count":    "2",
		"vendor_count":      "3",
		"first_date":        `"2024-01-01"`,
		"last_date":         `"2024-01-04"`,
		"top_vendors":       `{"Shell":60.00,"Starbucks":9.75,"Costa":3.00}`,
	}
	for key, want := range checks {
		if string(summary[key]) != want {
			t.Errorf("summary[%s] = %s, want %s", key, summary[key], want)
		}
	}

	w = doRequest(t, handler, http.MethodDelete, uploadPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK; got %v", w.Code)
	}

	w = doRequest(t, handler, http.MethodGet, "/transactions", nil)
	if all := decodeBody[map[string][]transactionResponse](t, w); len(all["all_transactions"]) != 0 {
		t.Errorf("Expected upload transactions to be removed, got %d", len(all["all_transactions"]))
	}

	if w = doRequest(t, handler, http.MethodGet, uploadPath+"/summary", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for deleted upload summary; got %v", w.Code)
	}
}

func TestUploadErrors(t *testing.T) {
	handler, _, publisher := setupRouter(t)

	tests := []struct {
		name     string
		filename string
		content  string
		contains string
	}{
		{
			name:     "unsupported format",
			filename: "data.xlsx",
			content:  "whatever",
			contains: "unsupported file format",
		},
		{
			name:     "missing columns",
			filename: "data.csv",
			content:  "Date,Vendor\n2024-01-01,Shop\n",
			contains: "missing required columns",
		},
		{
			name:     "no valid rows",
			filename: "data.csv",
			content:  "Date,Vendor,Category,Amount\nbad,Shop,Food,1\n",
			contains: "row 1: date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadFile(t, handler, tt.filename, tt.content)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400; got %v: %s", w.Code, w.Body.String())
			}

			errs := decodeBody[map[string][]string](t, w)
			if !strings.Contains(strings.Join(errs["file"], "\n"), tt.contains) {
				t.Errorf("errors = %v, want one containing %q", errs, tt.contains)
			}
		})
	}

	if len(publisher.messages) != 0 {
		t.Errorf("Failed uploads must not publish, got %d messages", len(publisher.messages))
	}
}

func TestUploadMissingFile(t *testing.T) {
	handler, _, _ := setupRouter(t)

	w := doRequest(t, handler, http.MethodPost, "/uploads", map[string]string{"file": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400; got %v", w.Code)
	}

	if w = doRequest(t, handler, http.MethodGet, "/uploads/42", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing upload; got %v", w.Code)
	}
}

func TestUploadLargestAmountSummary(t *testing.T) {
	handler, _, _ := setupRouter(t)

	w := uploadFile(t, handler, "big.csv", "Date,Vendor,Category,Amount\n2024-01-02,Shop,Food,99999999999999999.99\n")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, handler, http.MethodGet, "/uploads/1/summary", nil)

	var summary map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}

	if string(summary["total_spent"]) != "99999999999999999.99" {
		t.Errorf("total_spent = %s, want 99999999999999999.99", summary["total_spent"])
	}
}

func TestUploadRejectsExponentAmounts(t *testing.T) {
	handler, _, _ := setupRouter(t)

	w := uploadFile(t, handler, "exp.csv", "Date,Vendor,Category,Amount\n2024-01-02,Shop,Food,1e-9999999\n2024-01-02,Shop,Food,5\n")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	created := decodeBody[struct {
		RejectedRows []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
		} `json:"rejected_rows"`
	}](t, w)

	if len(created.RejectedRows) != 1 || created.RejectedRows[0].Row != 1 || created.RejectedRows[0].Field != "amount" {
		t.Errorf("Unexpected rejected rows: %+v", created.RejectedRows)
	}
}

func TestUploadKeepsRowsAroundShortRow(t *testing.T) {
	handler, _, _ := setupRouter(t)

	w := uploadFile(t, handler, "short.csv", "Date,Vendor,Category,Amount\n2024-01-02,Shop\n2024-01-03,Cafe,Food,4\n")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	created := decodeBody[struct {
		RejectedRows []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
		} `json:"rejected_rows"`
	}](t, w)

	if len(created.RejectedRows) != 1 || created.RejectedRows[0].Row != 1 || created.RejectedRows[0].Field != "row" {
		t.Errorf("Unexpected rejected rows: %+v", created.RejectedRows)
	}
}
