package library

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// BookStatus represents the circulation state of a book.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookIssued    BookStatus = "issued"
)

// bookIDPattern is the canonical catalog id format: a fixed BK- prefix
// followed by an alphanumeric suffix.
var bookIDPattern = regexp.MustCompile(`^BK-[A-Za-z0-9]+$`)

// Book represents a single physical copy in the catalog.
type Book struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      string     `json:"isbn,omitempty"`
	Status    BookStatus `json:"status"`
	AddedDate time.Time  `json:"addedDate"`
}

// Validate checks the fields required on every book record.
func (b *Book) Validate() error {
	if !bookIDPattern.MatchString(b.ID) {
		return fmt.Errorf("%w: book id %q must match %s", ErrValidation, b.ID, bookIDPattern)
	}

	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: book title is required", ErrValidation)
	}

	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("%w: book author is required", ErrValidation)
	}

	return nil
}
