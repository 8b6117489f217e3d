package book

import (
	"time"

	"libris/internal/library"
)

type bookResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Author    string             `json:"author"`
	ISBN      string             `json:"isbn,omitempty"`
	Status    library.BookStatus `json:"status"`
	AddedDate time.Time          `json:"added_date"`
}

func toResponse(b *library.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Status:    b.Status,
		AddedDate: b.AddedDate,
	}
}

func toResponseList(books []*library.Book) []bookResponse {
	resp := make([]bookResponse, len(books))
	for i, b := range books {
		resp[i] = toResponse(b)
	}

	return resp
}
