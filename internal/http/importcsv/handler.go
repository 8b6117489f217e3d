package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"libris/internal/importer"
	"libris/internal/library"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	importSvc *importer.Service
	libSvc    *library.Service
	librarian func(http.Handler) http.Handler
}

func NewHandler(importSvc *importer.Service, libSvc *library.Service, librarian func(http.Handler) http.Handler) *Handler {
	return &Handler{
		importSvc: importSvc,
		libSvc:    libSvc,
		librarian: librarian,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.librarian)
		r.Post("/", h.importCSV)
	})
}

type importResponse struct {
	BooksImported   int `json:"books_imported"`
	MembersImported int `json:"members_imported"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	batch, err := h.importSvc.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()

	// Imported rows go through the same upsert path as hand-entered ones,
	// so id format and required-field rules apply uniformly. Files carrying
	// added_date/join_date columns keep their dates; only dateless rows get
	// stamped with the import time.
	for _, b := range batch.Books {
		if b.AddedDate.IsZero() {
			b.AddedDate = now
		}

		if err := h.libSvc.UpsertBook(r.Context(), b); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	for _, m := range batch.Members {
		if m.JoinDate.IsZero() {
			m.JoinDate = now
		}

		if err := h.libSvc.UpsertMember(r.Context(), m); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	resp := importResponse{
		BooksImported:   len(batch.Books),
		MembersImported: len(batch.Members),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrValidation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, library.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, library.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
