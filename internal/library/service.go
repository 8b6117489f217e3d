package library

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// DefaultOverdueThresholdDays is the loan period after which an open
// transaction counts as overdue.
const DefaultOverdueThresholdDays = 14

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=library
type Repository interface {
	LoadBooks(ctx context.Context) ([]*Book, error)
	SaveBooks(ctx context.Context, books []*Book) error

	LoadMembers(ctx context.Context) ([]*Member, error)
	SaveMembers(ctx context.Context, members []*Member) error

	LoadTransactions(ctx context.Context) ([]*Transaction, error)
	SaveTransactions(ctx context.Context, txs []*Transaction) error
}

// Service owns the book, member and transaction collections and enforces
// every cross-collection invariant on mutation. It is the only component
// that talks to the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListFilter narrows ListTransactions results.
type ListFilter struct {
	Status   *TransactionStatus
	MemberID *string
}

// reconcileStatuses rebuilds each book's status from the open transactions.
// The transaction collection is written first on issue/return, so after a
// crash between the two writes it is the source of truth and a stale book
// status must not be trusted.
func reconcileStatuses(books []*Book, txs []*Transaction) {
	open := make(map[string]bool, len(txs))

	for _, t := range txs {
		if t.Open() {
			open[t.BookID] = true
		}
	}

	for _, b := range books {
		if open[b.ID] {
			b.Status = BookIssued
		} else {
			b.Status = BookAvailable
		}
	}
}

// UpsertBook creates the book or replaces an existing record with the same
// id in place, preserving collection order. AddedDate and circulation
// status are immutable through this path: replacing a record keeps the
// values already on file.
func (s *Service) UpsertBook(ctx context.Context, book *Book) error {
	if book == nil {
		return fmt.Errorf("%w: book is required", ErrValidation)
	}

	if err := book.Validate(); err != nil {
		return err
	}

	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range books {
		if existing.ID != book.ID {
			continue
		}

		book.AddedDate = existing.AddedDate
		book.Status = existing.Status
		books[i] = book
		replaced = true

		break
	}

	if !replaced {
		if book.AddedDate.IsZero() {
			return fmt.Errorf("%w: added date is required", ErrValidation)
		}

		book.Status = BookAvailable
		books = append(books, book)
	}

	return s.repo.SaveBooks(ctx, books)
}

// DeleteBook removes the book from the catalog. Deleting a book that is
// currently on loan fails; deleting an unknown id is a no-op.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return err
	}

	for _, t := range txs {
		if t.Open() && t.BookID == id {
			return fmt.Errorf("%w: book %s is currently on loan", ErrConflict, id)
		}
	}

	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return err
	}

	kept := books[:0]

	for _, b := range books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}

	if len(kept) == len(books) {
		return nil
	}

	return s.repo.SaveBooks(ctx, kept)
}

// UpsertMember creates the member or replaces an existing record with the
// same id in place. JoinDate is preserved when replacing.
func (s *Service) UpsertMember(ctx context.Context, member *Member) error {
	if member == nil {
		return fmt.Errorf("%w: member is required", ErrValidation)
	}

	if err := member.Validate(); err != nil {
		return err
	}

	members, err := s.repo.LoadMembers(ctx)
	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range members {
		if existing.ID != member.ID {
			continue
		}

		member.JoinDate = existing.JoinDate
		members[i] = member
		replaced = true

		break
	}

	if !replaced {
		if member.JoinDate.IsZero() {
			return fmt.Errorf("%w: join date is required", ErrValidation)
		}

		members = append(members, member)
	}

	return s.repo.SaveMembers(ctx, members)
}

// DeleteMember removes the member. Deleting a member with outstanding
// loans fails; deleting an unknown id is a no-op.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return err
	}

	for _, t := range txs {
		if t.Open() && t.MemberID == id {
			return fmt.Errorf("%w: member %s has active loans", ErrConflict, id)
		}
	}

	members, err := s.repo.LoadMembers(ctx)
	if err != nil {
		return err
	}

	kept := members[:0]

	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}

	if len(kept) == len(members) {
		return nil
	}

	return s.repo.SaveMembers(ctx, kept)
}

// IssueBook opens a loan for an available book to an existing member and
// returns the created transaction. The transaction collection is persisted
// before the book status so that a crash in between leaves the transaction
// record, from which the status is rebuilt on the next load.
func (s *Service) IssueBook(ctx context.Context, bookID, memberID string, issueDate time.Time) (*Transaction, error) {
	if issueDate.IsZero() {
		return nil, fmt.Errorf("%w: issue date is required", ErrValidation)
	}

	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	reconcileStatuses(books, txs)

	book := findBook(books, bookID)
	if book == nil {
		return nil, fmt.Errorf("%w: book %s", ErrNotFound, bookID)
	}

	members, err := s.repo.LoadMembers(ctx)
	if err != nil {
		return nil, err
	}

	if findMember(members, memberID) == nil {
		return nil, fmt.Errorf("%w: member %s", ErrNotFound, memberID)
	}

	if book.Status != BookAvailable {
		return nil, fmt.Errorf("%w: book %s is already issued", ErrConflict, bookID)
	}

	loan := &Transaction{
		ID:        NewTransactionID(),
		BookID:    bookID,
		MemberID:  memberID,
		IssueDate: issueDate,
		Status:    TransactionIssued,
	}

	txs = append(txs, loan)

	if err := s.repo.SaveTransactions(ctx, txs); err != nil {
		return nil, err
	}

	book.Status = BookIssued

	if err := s.repo.SaveBooks(ctx, books); err != nil {
		return nil, err
	}

	return loan, nil
}

// ReturnBook closes the open loan for the book and returns the updated
// transaction. Finding more than one open loan for the same book means the
// persisted data already violates the one-open-loan invariant, so the
// operation aborts rather than picking one.
func (s *Service) ReturnBook(ctx context.Context, bookID string, returnDate time.Time) (*Transaction, error) {
	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	var loan *Transaction

	for _, t := range txs {
		if !t.Open() || t.BookID != bookID {
			continue
		}

		if loan != nil {
			return nil, fmt.Errorf("%w: book %s has multiple open loans", ErrCorruptState, bookID)
		}

		loan = t
	}

	if loan == nil {
		return nil, fmt.Errorf("%w: book %s is not currently issued", ErrNotFound, bookID)
	}

	loan.ReturnDate = &returnDate
	loan.Status = TransactionReturned

	if err := s.repo.SaveTransactions(ctx, txs); err != nil {
		return nil, err
	}

	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}

	if book := findBook(books, bookID); book != nil {
		book.Status = BookAvailable

		if err := s.repo.SaveBooks(ctx, books); err != nil {
			return nil, err
		}
	}

	return loan, nil
}

// ListOverdue yields the open transactions issued more than thresholdDays
// before asOf. A threshold of zero or less means the default loan period.
// The sequence is restartable and takes no further repository reads.
func (s *Service) ListOverdue(ctx context.Context, asOf time.Time, thresholdDays int) (iter.Seq[*Transaction], error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultOverdueThresholdDays
	}

	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := asOf.AddDate(0, 0, -thresholdDays)

	return func(yield func(*Transaction) bool) {
		for _, t := range txs {
			if !t.Open() || !t.IssueDate.Before(cutoff) {
				continue
			}

			if !yield(t) {
				return
			}
		}
	}, nil
}

// ListBooks returns the catalog in stored order with statuses rebuilt from
// the transaction collection.
func (s *Service) ListBooks(ctx context.Context) ([]*Book, error) {
	books, err := s.repo.LoadBooks(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	reconcileStatuses(books, txs)

	return books, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (*Book, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	book := findBook(books, id)
	if book == nil {
		return nil, fmt.Errorf("%w: book %s", ErrNotFound, id)
	}

	return book, nil
}

func (s *Service) ListMembers(ctx context.Context) ([]*Member, error) {
	return s.repo.LoadMembers(ctx)
}

func (s *Service) GetMember(ctx context.Context, id string) (*Member, error) {
	members, err := s.repo.LoadMembers(ctx)
	if err != nil {
		return nil, err
	}

	member := findMember(members, id)
	if member == nil {
		return nil, fmt.Errorf("%w: member %s", ErrNotFound, id)
	}

	return member, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Status == nil && filter.MemberID == nil {
		return txs, nil
	}

	var out []*Transaction

	for _, t := range txs {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}

		if filter.MemberID != nil && t.MemberID != *filter.MemberID {
			continue
		}

		out = append(out, t)
	}

	return out, nil
}

func findBook(books []*Book, id string) *Book {
	for _, b := range books {
		if b.ID == id {
			return b
		}
	}

	return nil
}

func findMember(members []*Member, id string) *Member {
	for _, m := range members {
		if m.ID == id {
			return m
		}
	}

	return nil
}
