package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GustavoCaso/spendtrace/internal/events"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

// 32 MB
const maxMemory = 32 << 20

type router struct {
	storage   storage.Storage
	publisher events.Publisher
	logger    *logger.Logger
}

// New wires every API route. trustedOrigins lists the origins allowed to send
// unsafe cross-origin requests.
func New(
	storage storage.Storage,
	publisher events.Publisher,
	logger *logger.Logger,
	trustedOrigins []string,
) http.Handler {
	router := &router{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(func(next http.Handler) http.Handler {
		return loggingMiddleware(logger, next)
	})
	r.Use(xFrameDenyHeaderMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return csrfProtectionMiddleware(logger, trustedOrigins, next)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, detail("Method \""+r.Method+"\" not allowed."))
	})

	r.Get("/", router.homeHandler)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", router.categoriesHandler)
		r.Post("/", router.createCategoryHandler)

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", router.categoryHandler)
			r.Put("/", router.updateCategoryHandler)
			r.Patch("/", router.updateCategoryHandler)
			r.Delete("/", router.deleteCategoryHandler)
		})
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", router.transactionsHandler)
		r.Post("/", router.createTransactionHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", router.transactionHandler)
			r.Put("/", router.updateTransactionHandler)
			r.Patch("/", router.updateTransactionHandler)
			r.Delete("/", router.deleteTransactionHandler)
		})
	})

	r.Route("/uploads", func(r chi.Router) {
		r.Get("/", router.uploadsHandler)
		r.Post("/", router.createUploadHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", router.uploadHandler)
			r.Delete("/", router.deleteUploadHandler)
			r.Get("/summary", router.uploadSummaryHandler)
		})
	})

	return r
}
