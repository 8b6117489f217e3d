package circulation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"libris/internal/library"
)

type Handler struct {
	svc       *library.Service
	librarian func(http.Handler) http.Handler
}

func NewHandler(svc *library.Service, librarian func(http.Handler) http.Handler) *Handler {
	return &Handler{svc: svc, librarian: librarian}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/overdue", h.overdue)

	r.Group(func(r chi.Router) {
		r.Use(h.librarian)
		r.Post("/issue", h.issue)
		r.Post("/return", h.returnBook)
	})
}

type issueRequest struct {
	BookID    string     `json:"book_id"`
	MemberID  string     `json:"member_id"`
	IssueDate *time.Time `json:"issue_date,omitempty"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	loan, err := h.svc.IssueBook(r.Context(), req.BookID, req.MemberID, issueDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(loan)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type returnRequest struct {
	BookID     string     `json:"book_id"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

func (h *Handler) returnBook(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	returnDate := time.Now()
	if req.ReturnDate != nil {
		returnDate = *req.ReturnDate
	}

	loan, err := h.svc.ReturnBook(r.Context(), req.BookID, returnDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(loan)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := library.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(library.TransactionStatus(s))
	}

	if s := r.URL.Query().Get("member_id"); s != "" {
		filter.MemberID = new(s)
	}

	txs, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()

	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		asOf = t
	}

	threshold := 0

	if s := r.URL.Query().Get("threshold_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "threshold_days must be an integer", http.StatusBadRequest)
			return
		}

		threshold = n
	}

	seq, err := h.svc.ListOverdue(r.Context(), asOf, threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := []transactionResponse{}
	for loan := range seq {
		resp = append(resp, toResponse(loan))
	}

	w.Header().Set("Content-Type", "application/json")

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
