package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"libris/internal/library"
)

// Service writes CSV snapshots of the catalog and loan ledger. The column
// layout matches what the importer accepts, so an exported catalog can be
// loaded back into another instance.
type Service struct {
	library *library.Service
}

func NewService(libService *library.Service) *Service {
	return &Service{library: libService}
}

// WriteBooksCSV writes the full catalog to w.
func (s *Service) WriteBooksCSV(ctx context.Context, w io.Writer) error {
	books, err := s.library.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("listing books: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "title", "author", "isbn", "status", "added_date"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, b := range books {
		record := []string{b.ID, b.Title, b.Author, b.ISBN, string(b.Status), b.AddedDate.Format(time.DateOnly)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing book %s: %w", b.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteMembersCSV writes the member roster to w.
func (s *Service) WriteMembersCSV(ctx context.Context, w io.Writer) error {
	members, err := s.library.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("listing members: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "name", "email", "phone", "join_date"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, m := range members {
		record := []string{m.ID, m.Name, m.Email, m.Phone, m.JoinDate.Format(time.DateOnly)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing member %s: %w", m.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteLoansCSV writes the loan ledger to w, honoring the filter.
func (s *Service) WriteLoansCSV(ctx context.Context, w io.Writer, filter library.ListFilter) error {
	loans, err := s.library.ListTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "book_id", "member_id", "issue_date", "return_date", "status"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, t := range loans {
		returned := ""
		if t.ReturnDate != nil {
			returned = t.ReturnDate.Format(time.DateOnly)
		}

		record := []string{t.ID, t.BookID, t.MemberID, t.IssueDate.Format(time.DateOnly), returned, string(t.Status)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteArchive writes a zip containing all three CSV snapshots to w.
func (s *Service) WriteArchive(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	files := []struct {
		name  string
		write func(context.Context, io.Writer) error
	}{
		{"books.csv", s.WriteBooksCSV},
		{"members.csv", s.WriteMembersCSV},
		{"loans.csv", func(ctx context.Context, w io.Writer) error {
			return s.WriteLoansCSV(ctx, w, library.ListFilter{})
		}},
	}

	for _, f := range files {
		zf, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}

		if err := f.write(ctx, zf); err != nil {
			return err
		}
	}

	return zw.Close()
}
