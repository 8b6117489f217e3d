package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"libris/internal/http/authn"
	"libris/internal/http/book"
	"libris/internal/http/circulation"
	"libris/internal/http/export"
	"libris/internal/http/importcsv"
	"libris/internal/http/member"
)

func New(
	authV1 *authn.Handler,
	booksV1 *book.Handler,
	membersV1 *member.Handler,
	circulationV1 *circulation.Handler,
	importV1 *importcsv.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Route("/books", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			booksV1.Routes(r)
		})

		r.Route("/members", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			membersV1.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			circulationV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)
		r.Route("/export", exportV1.Routes)
	})

	return router
}
