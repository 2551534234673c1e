package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

const (
	maxVendorLength    = 155
	maxAmountPlaces    = 2
	maxAmountWholeDigs = 17
)

var maxAmount = decimal.New(1, maxAmountWholeDigs)

type nestedTransactionResponse struct {
	ID     int64  `json:"id"`
	Vendor string `json:"vendor"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

type transactionResponse struct {
	ID           int64  `json:"id"`
	Vendor       string `json:"vendor"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	CategoryName string `json:"category_name"`
	Category     string `json:"category"`
	URL          string `json:"url"`
}

type transactionRequest struct {
	Vendor   *string      `json:"vendor"`
	Amount   *json.Number `json:"amount"`
	Date     *string      `json:"date"`
	Category *int64       `json:"category"`
}

func newNestedTransactionsResponse(r *http.Request, transactions []storage.Transaction) []nestedTransactionResponse {
	response := make([]nestedTransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		response = append(response, nestedTransactionResponse{
			ID:     transaction.ID(),
			Vendor: transaction.Vendor(),
			Amount: transaction.Amount().StringFixed(maxAmountPlaces),
			Date:   util.FormatDate(transaction.Date()),
			URL:    transactionURL(r, transaction.ID()),
		})
	}
	return response
}

func newTransactionResponse(r *http.Request, transaction storage.Transaction, categorySlug string) transactionResponse {
	return transactionResponse{
		ID:           transaction.ID(),
		Vendor:       transaction.Vendor(),
		Amount:       transaction.Amount().StringFixed(maxAmountPlaces),
		Date:         util.FormatDate(transaction.Date()),
		CategoryName: transaction.CategoryName(),
		Category:     categoryURL(r, categorySlug),
		URL:          transactionURL(r, transaction.ID()),
	}
}

func parseAmount(value json.Number) (decimal.Decimal, string) {
	if !util.IsPlainDecimal(value.String()) {
		return decimal.Zero, "A valid number is required."
	}

	amount, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero, "A valid number is required."
	}

	if !amount.Equal(amount.Round(maxAmountPlaces)) {
		return decimal.Zero, fmt.Sprintf("Ensure that there are no more than %d decimal places.", maxAmountPlaces)
	}

	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Sprintf(
			"Ensure that there are no more than %d digits before the decimal point.", maxAmountWholeDigs)
	}

	return amount, ""
}

// apply validates req and merges it into current. With create set every field
// is mandatory; otherwise missing fields keep the values of current.
func (router *router) apply(
	r *http.Request,
	req transactionRequest,
	current storage.Transaction,
	create bool,
) (storage.Transaction, ValidationError, error) {
	errs := ValidationError{}

	var id, categoryID int64
	var vendor, categoryName string
	var amount decimal.Decimal
	var date time.Time
	var uploadID *int64

	if current != nil {
		id = current.ID()
		vendor = current.Vendor()
		amount = current.Amount()
		date = current.Date()
		categoryID = current.CategoryID()
		categoryName = current.CategoryName()
		uploadID = current.UploadID()
	}

	if req.Vendor != nil {
		vendor = strings.TrimSpace(*req.Vendor)
		switch {
		case vendor == "":
			errs.Add("vendor", msgBlank)
		case len([]rune(vendor)) > maxVendorLength:
			errs.Add("vendor", fmt.Sprintf("Ensure this field has no more than %d characters.", maxVendorLength))
		}
	} else if create {
		errs.Add("vendor", msgRequired)
	}

	if req.Amount != nil {
		var msg string
		if amount, msg = parseAmount(*req.Amount); msg != "" {
			errs.Add("amount", msg)
		}
	} else if create {
		errs.Add("amount", msgRequired)
	}

	if req.Date != nil {
		parsed, err := util.ParseDate(strings.TrimSpace(*req.Date))
		if err != nil {
			errs.Add("date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		}
		date = parsed
	} else if create {
		errs.Add("date", msgRequired)
	}

	if req.Category != nil {
		category, err := router.storage.GetCategory(r.Context(), *req.Category)
		switch {
		case errors.Is(err, &storage.NotFoundError{}):
			errs.Add("category", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.Category))
		case err != nil:
			return nil, nil, err
		default:
			categoryID = category.ID()
			categoryName = category.Name()
		}
	} else if create {
		errs.Add("category", msgRequired)
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	return storage.NewTransaction(id, vendor, amount, date, categoryID, categoryName, uploadID), nil, nil
}

func (router *router) transactionsHandler(w http.ResponseWriter, r *http.Request) {
	transactions, err := router.storage.GetTransactions(r.Context())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	categories, err := router.storage.GetCategories(r.Context())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	slugs := make(map[int64]string, len(categories))
	for _, category := range categories {
		slugs[category.ID()] = category.Slug()
	}

	response := make([]transactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		response = append(response, newTransactionResponse(r, transaction, slugs[transaction.CategoryID()]))
	}

	respondJSON(w, http.StatusOK, map[string][]transactionResponse{"all_transactions": response})
}

func (router *router) transactionHandler(w http.ResponseWriter, r *http.Request) {
	transaction, ok := router.transactionFromPath(w, r)
	if !ok {
		return
	}

	router.respondTransaction(w, r, http.StatusOK, transaction)
}

func (router *router) createTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, detail(err.Error()))
		return
	}

	transaction, errs, err := router.apply(r, req, nil, true)
	if err != nil {
		router.respondError(w, r, err)
		return
	}
	if len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	id, err := router.storage.CreateTransaction(r.Context(), transaction)
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	created, err := router.storage.GetTransaction(r.Context(), id)
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	router.respondTransaction(w, r, http.StatusCreated, created)
}

func (router *router) updateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	current, ok := router.transactionFromPath(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, detail(err.Error()))
		return
	}

	transaction, errs, err := router.apply(r, req, current, false)
	if err != nil {
		router.respondError(w, r, err)
		return
	}
	if len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	if _, err = router.storage.UpdateTransaction(r.Context(), transaction); err != nil {
		router.respondError(w, r, err)
		return
	}

	router.respondTransaction(w, r, http.StatusOK, transaction)
}

func (router *router) deleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transaction, ok := router.transactionFromPath(w, r)
	if !ok {
		return
	}

	if _, err := router.storage.DeleteTransaction(r.Context(), transaction.ID()); err != nil {
		router.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction was removed"})
}

func (router *router) respondTransaction(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	transaction storage.Transaction,
) {
	category, err := router.storage.GetCategory(r.Context(), transaction.CategoryID())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	respondJSON(w, status, newTransactionResponse(r, transaction, category.Slug()))
}

func (router *router) transactionFromPath(w http.ResponseWriter, r *http.Request) (storage.Transaction, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondNotFound(w)
		return nil, false
	}

	transaction, err := router.storage.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, &storage.NotFoundError{}) {
			respondNotFound(w)
		} else {
			router.respondError(w, r, err)
		}
		return nil, false
	}

	return transaction, true
}
