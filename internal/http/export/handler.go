package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"libris/internal/export"
	"libris/internal/library"
)

type Handler struct {
	svc       *export.Service
	librarian func(http.Handler) http.Handler
}

func NewHandler(svc *export.Service, librarian func(http.Handler) http.Handler) *Handler {
	return &Handler{svc: svc, librarian: librarian}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(h.librarian)

	r.Get("/books.csv", h.books)
	r.Get("/members.csv", h.members)
	r.Get("/loans.csv", h.loans)
	r.Get("/archive", h.archive)
}

func (h *Handler) books(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="books.csv"`)

	if err := h.svc.WriteBooksCSV(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="members.csv"`)

	if err := h.svc.WriteMembersCSV(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) loans(w http.ResponseWriter, r *http.Request) {
	filter := library.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(library.TransactionStatus(s))
	}

	if s := r.URL.Query().Get("member_id"); s != "" {
		filter.MemberID = new(s)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="loans.csv"`)

	if err := h.svc.WriteLoansCSV(r.Context(), w, filter); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"libris_%s.zip\"", time.Now().Format("20060102")))

	if err := h.svc.WriteArchive(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
