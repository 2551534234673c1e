package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GustavoCaso/spendtrace/internal/storage"
)

type categoryResponse struct {
	Name string `json:"category_name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

type categoryDetailResponse struct {
	categoryResponse
	Transactions []nestedTransactionResponse `json:"transactions"`
}

type categoryRequest struct {
	Name *string `json:"category_name"`
}

func newCategoryResponse(r *http.Request, category storage.Category) categoryResponse {
	return categoryResponse{
		Name: category.Name(),
		Slug: category.Slug(),
		URL:  categoryURL(r, category.Slug()),
	}
}

// validate checks the request. On create the name is mandatory; on update a
// missing name keeps the current one.
func (req categoryRequest) validate(create bool) (string, ValidationError) {
	errs := ValidationError{}

	if req.Name == nil {
		if create {
			errs.Add("category_name", msgRequired)
		}
		return "", errs
	}

	name := strings.TrimSpace(*req.Name)
	switch {
	case name == "":
		errs.Add("category_name", msgBlank)
	case len([]rune(name)) > storage.MaxCategoryNameLength:
		errs.Add("category_name",
			fmt.Sprintf("Ensure this field has no more than %d characters.", storage.MaxCategoryNameLength))
	}

	return name, errs
}

func (router *router) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := router.storage.GetCategories(r.Context())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, newCategoryResponse(r, category))
	}

	respondJSON(w, http.StatusOK, response)
}

func (router *router) categoryHandler(w http.ResponseWriter, r *http.Request) {
	category, ok := router.categoryFromPath(w, r)
	if !ok {
		return
	}

	transactions, err := router.storage.GetTransactionsByCategory(r.Context(), category.ID())
	if err != nil {
		router.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, categoryDetailResponse{
		categoryResponse: newCategoryResponse(r, category),
		Transactions:     newNestedTransactionsResponse(r, transactions),
	})
}

func (router *router) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, detail(err.Error()))
		return
	}

	name, errs := req.validate(true)
	if len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	category, err := router.storage.CreateCategory(r.Context(), name)
	if err != nil {
		router.respondCategoryWriteError(w, r, err)
		return
	}

	router.logger.Info("Category created", "name", category.Name(), "slug", category.Slug())

	respondJSON(w, http.StatusCreated, newCategoryResponse(r, category))
}

func (router *router) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, ok := router.categoryFromPath(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, detail(err.Error()))
		return
	}

	name, errs := req.validate(false)
	if len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	if req.Name != nil && name != category.Name() {
		if err := router.storage.UpdateCategory(r.Context(), category.ID(), name); err != nil {
			router.respondCategoryWriteError(w, r, err)
			return
		}
		category = storage.NewCategory(category.ID(), name, category.Slug())
	}

	respondJSON(w, http.StatusOK, newCategoryResponse(r, category))
}

func (router *router) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, ok := router.categoryFromPath(w, r)
	if !ok {
		return
	}

	if _, err := router.storage.DeleteCategory(r.Context(), category.ID()); err != nil {
		router.respondError(w, r, err)
		return
	}

	router.logger.Info("Category deleted", "slug", category.Slug())

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category was removed..."})
}

func (router *router) categoryFromPath(w http.ResponseWriter, r *http.Request) (storage.Category, bool) {
	category, err := router.storage.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, &storage.NotFoundError{}) {
			respondNotFound(w)
		} else {
			router.respondError(w, r, err)
		}
		return nil, false
	}

	return category, true
}

func (router *router) respondCategoryWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *storage.ConflictError
	if errors.As(err, &conflict) {
		errs := ValidationError{}
		if conflict.Field == "slug" {
			errs.Add("slug", "category with this slug already exists.")
		} else {
			errs.Add("category_name", "category with this category name already exists.")
		}
		respondJSON(w, http.StatusBadRequest, errs)
		return
	}

	if errors.Is(err, &storage.NotFoundError{}) {
		respondNotFound(w)
		return
	}

	router.respondError(w, r, err)
}
