package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GustavoCaso/spendtrace/internal/events"
	importutil "github.com/GustavoCaso/spendtrace/internal/import"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/summary"
)

type uploadResponse struct {
	ID               int64  `json:"id"`
	FileName         string `json:"file_name"`
	Size             int64  `json:"size"`
	UploadedAt       string `json:"uploaded_at"`
	TransactionCount int64  `json:"transaction_count"`
	URL              string `json:"url"`
	Summary          string `json:"summary"`
}

type uploadDetailResponse struct {
	uploadResponse
	Transactions []nestedTransactionResponse `json:"transactions"`
}

type uploadCreatedResponse struct {
	Message         string                `json:"message"`
	UploadID        int64                 `json:"upload_id"`
	SpendingSummary summary.Breakdown     `json:"spending_summary"`
	RejectedRows    []importutil.RowError `json:"rejected_rows"`
}

func newUploadResponse(r *http.Request, upload storage.Upload) uploadResponse {
	return uploadResponse{
		ID:               upload.ID(),
		FileName:         upload.Filename(),
		Size:             upload.Size(),
		UploadedAt:       upload.UploadedAt().Format(time.RFC3339),
		TransactionCount: upload.TransactionCount(),
		URL:              uploadURL(r, upload.ID()),
		Summary:          uploadSummaryURL(r, upload.ID()),
	}
}

func (router *router) uploadsHandler(w http.ResponseWriter, r *http.Request) {
	uploads, err := router.storage.GetUploads(r.Context())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	response := make([]uploadResponse, 0, len(uploads))
	for _, upload := range uploads {
		response = append(response, newUploadResponse(r, upload))
	}

	respondJSON(w, http.StatusOK, map[string][]uploadResponse{"uploaded_files": response})
}

func (router *router) createUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMemory)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		errs := ValidationError{}
		errs.Add("file", "The submitted data was not a file. Check the encoding type on the form.")
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errs := ValidationError{}
		if errors.Is(err, http.ErrMissingFile) {
			errs.Add("file", "No file was submitted.")
		} else {
			errs.Add("file", "Error retrieving the file.")
		}
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}
	defer file.Close()

	router.logger.Info("Importing file", "name", header.Filename, "size", header.Size)

	info, err := importutil.Import(r.Context(), header.Filename, file, header.Size, router.storage, router.logger)
	if err != nil {
		switch {
		case errors.Is(err, importutil.ErrInvalidFile):
			errs := ValidationError{}
			errs.Add("file", err.Error())
			respondJSON(w, http.StatusBadRequest, errs)
		case errors.Is(err, importutil.ErrNoValidRows):
			errs := ValidationError{}
			errs.Add("file", err.Error())
			for _, rowErr := range info.Rejected {
				errs.Add("file", rowErr.Error())
			}
			respondJSON(w, http.StatusBadRequest, errs)
		default:
			router.respondError(w, r, err)
		}
		return
	}

	msg := events.NewUploadProcessedMessage(
		info.Upload.ID(),
		info.Upload.Filename(),
		info.Upload.TransactionCount(),
		info.Summary.TotalSpent,
	)
	if publishErr := router.publisher.PublishUploadProcessed(r.Context(), msg); publishErr != nil {
		router.logger.Warn("Failed to publish upload notification",
			"upload_id", info.Upload.ID(),
			"error", publishErr,
		)
	}

	respondJSON(w, http.StatusCreated, uploadCreatedResponse{
		Message:         fmt.Sprintf("%d number of Transactions were created from your uploaded file.", info.TotalImports),
		UploadID:        info.Upload.ID(),
		SpendingSummary: info.Summary.SpendingPerCategory,
		RejectedRows:    info.Rejected,
	})
}

func (router *router) uploadHandler(w http.ResponseWriter, r *http.Request) {
	upload, ok := router.uploadFromPath(w, r)
	if !ok {
		return
	}

	transactions, err := router.storage.GetTransactionsByUpload(r.Context(), upload.ID())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, uploadDetailResponse{
		uploadResponse: newUploadResponse(r, upload),
		Transactions:   newNestedTransactionsResponse(r, transactions),
	})
}

func (router *router) deleteUploadHandler(w http.ResponseWriter, r *http.Request) {
	upload, ok := router.uploadFromPath(w, r)
	if !ok {
		return
	}

	if _, err := router.storage.DeleteUpload(r.Context(), upload.ID()); err != nil {
		router.respondError(w, r, err)
		return
	}

	router.logger.Info("Upload deleted", "upload_id", upload.ID(), "name", upload.Filename())

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Upload file and all related transactions were removed from our system...",
	})
}

func (router *router) uploadSummaryHandler(w http.ResponseWriter, r *http.Request) {
	upload, ok := router.uploadFromPath(w, r)
	if !ok {
		return
	}

	transactions, err := router.storage.GetTransactionsByUpload(r.Context(), upload.ID())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary.Summarize(summary.FromTransactions(transactions)))
}

func (router *router) uploadFromPath(w http.ResponseWriter, r *http.Request) (storage.Upload, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondNotFound(w)
		return nil, false
	}

	upload, err := router.storage.GetUpload(r.Context(), id)
	if err != nil {
		if errors.Is(err, &storage.NotFoundError{}) {
			respondNotFound(w)
		} else {
			router.respondError(w, r, err)
		}
		return nil, false
	}

	return upload, true
}
