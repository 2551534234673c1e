package router

import (
	"context"
	"net/http"
	"strconv"
	"testing"
)

func createCategory(t *testing.T, handler http.Handler, name string) {
	t.Helper()

	w := doRequest(t, handler, http.MethodPost, "/categories", map[string]string{"category_name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create category %s: %v", name, w.Code)
	}
}

func TestTransactionsCRUD(t *testing.T) {
	handler, stor, _ := setupRouter(t)
	ctx := context.Background()

	createCategory(t, handler, "Food")
	food, err := stor.GetCategoryBySlug(ctx, "food")
	if err != nil {
		t.Fatalf("Failed to get category: %v", err)
	}

	w := doRequest(t, handler, http.MethodPost, "/transactions", map[string]any{
		"vendor":   "  Corner Shop ",
		"amount":   "12.5",
		"date":     "2024-05-02",
		"category": food.ID(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	created := decodeBody[transactionResponse](t, w)
	if created.Vendor != "Corner Shop" || created.Amount != "12.50" || created.Date != "2024-05-02" {
		t.Errorf("Unexpected transaction: %+v", created)
	}
	if created.CategoryName != "Food" || created.Category != "http://example.com/categories/food" {
		t.Errorf("Unexpected category fields: %+v", created)
	}

	path := "/transactions/" + strconv.FormatInt(created.ID, 10)
	if created.URL != "http://example.com"+path {
		t.Errorf("url = %v", created.URL)
	}

	// numeric amounts are accepted too
	w = doRequest(t, handler, http.MethodPost, "/transactions", map[string]any{
		"vendor":   "Bakery",
		"amount":   3.2,
		"date":     "2024-05-03",
		"category": food.ID(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, handler, http.MethodGet, "/transactions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK; got %v", w.Code)
	}

	list := decodeBody[map[string][]transactionResponse](t, w)
	if len(list["all_transactions"]) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(list["all_transactions"]))
	}

	createCategory(t, handler, "Treats")
	treats, err := stor.GetCategoryBySlug(ctx, "treats")
	if err != nil {
		t.Fatalf("Failed to get category: %v", err)
	}

	w = doRequest(t, handler, http.MethodPatch, path, map[string]any{"amount": "-4.00", "category": treats.ID()})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK; got %v: %s", w.Code, w.Body.String())
	}

	updated := decodeBody[transactionResponse](t, w)
	if updated.Vendor != "Corner Shop" || updated.Amount != "-4.00" || updated.CategoryName != "Treats" {
		t.Errorf("Unexpected updated transaction: %+v", updated)
	}

	w = doRequest(t, handler, http.MethodGet, path, nil)
	if fetched := decodeBody[transactionResponse](t, w); fetched.Category != "http://example.com/categories/treats" {
		t.Errorf("Update not persisted: %+v", fetched)
	}

	w = doRequest(t, handler, http.MethodDelete, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK; got %v", w.Code)
	}

	if body := decodeBody[map[string]string](t, w); body["message"] != "Transaction was removed" {
		t.Errorf("Unexpected message: %v", body)
	}

	if w = doRequest(t, handler, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete; got %v", w.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	handler, _, _ := setupRouter(t)
	createCategory(t, handler, "Food")

	tests := []struct {
		name    string
		body    map[string]any
		field   string
		message string
	}{
		{
			name:    "missing vendor",
			body:    map[string]any{"amount": "1", "date": "2024-01-01", "category": 1},
			field:   "vendor",
			message: msgRequired,
		},
		{
			name:    "too many decimals",
			body:    map[string]any{"vendor": "x", "amount": "1.234", "date": "2024-01-01", "category": 1},
			field:   "amount",
			message: "Ensure that there are no more than 2 decimal places.",
		},
		{
			name:    "too many digits",
			body:    map[string]any{"vendor": "x", "amount": "100000000000000000", "date": "2024-01-01", "category": 1},
			field:   "amount",
			message: "Ensure that there are no more than 17 digits before the decimal point.",
		},
		{
			name:    "exponent amount",
			body:    map[string]any{"vendor": "x", "amount": "1e-9999999", "date": "2024-01-01", "category": 1},
			field:   "amount",
			message: "A valid number is required.",
		},
		{
			name:    "bad date",
			body:    map[string]any{"vendor": "x", "amount": "1", "date": "01/02/2024", "category": 1},
			field:   "date",
			message: "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
		},
		{
			name:    "unknown category",
			body:    map[string]any{"vendor": "x", "amount": "1", "date": "2024-01-01", "category": 99},
			field:   "category",
			message: `Invalid pk "99" - object does not exist.`,
		},
		{
			name:    "missing category",
			body:    map[string]any{"vendor": "x", "amount": "1", "date": "2024-01-01"},
			field:   "category",
			message: msgRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, handler, http.MethodPost, "/transactions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400; got %v: %s", w.Code, w.Body.String())
			}

			errs := decodeBody[map[string][]string](t, w)
			if len(errs[tt.field]) != 1 || errs[tt.field][0] != tt.message {
				t.Errorf("errors = %v, want %s: %q", errs, tt.field, tt.message)
			}
		})
	}
}

func TestTransactionInvalidJSON(t *testing.T) {
	handler, _, _ := setupRouter(t)

	w := doRequest(t, handler, http.MethodPost, "/transactions", map[string]any{"amount": "twelve"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400; got %v", w.Code)
	}

	if body := decodeBody[map[string]string](t, w); body["detail"] == "" {
		t.Errorf("Expected parse error detail, got %v", body)
	}

	if w = doRequest(t, handler, http.MethodGet, "/transactions/abc", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for non numeric id; got %v", w.Code)
	}
}

func TestTransactionLargestAmountRoundTrips(t *testing.T) {
	handler, _, _ := setupRouter(t)
	createCategory(t, handler, "Food")

	for _, amount := range []string{"99999999999999999.99", "-99999999999999999.99"} {
		w := doRequest(t, handler, http.MethodPost, "/transactions", map[string]any{
			"vendor":   "Big spender",
			"amount":   amount,
			"date":     "2024-01-01",
			"category": 1,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201; got %v: %s", w.Code, w.Body.String())
		}

		created := decodeBody[transactionResponse](t, w)
		if created.Amount != amount {
			t.Errorf("created amount = %s, want %s", created.Amount, amount)
		}

		w = doRequest(t, handler, http.MethodGet, "/transactions/"+strconv.FormatInt(created.ID, 10), nil)
		if fetched := decodeBody[transactionResponse](t, w); fetched.Amount != amount {
			t.Errorf("stored amount = %s, want %s", fetched.Amount, amount)
		}
	}
}
