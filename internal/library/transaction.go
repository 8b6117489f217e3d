package library

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a loan.
type TransactionStatus string

const (
	TransactionIssued   TransactionStatus = "issued"
	TransactionReturned TransactionStatus = "returned"
)

// Transaction represents a single loan of a book to a member. Transactions
// are created by issuing a book and closed by returning it; they are never
// edited otherwise and never deleted.
type Transaction struct {
	ID         string            `json:"id"`
	BookID     string            `json:"bookId"`
	MemberID   string            `json:"memberId"`
	IssueDate  time.Time         `json:"issueDate"`
	ReturnDate *time.Time        `json:"returnDate"`
	Status     TransactionStatus `json:"status"`
}

// Open reports whether the loan is still outstanding.
func (t *Transaction) Open() bool {
	return t.Status == TransactionIssued && t.ReturnDate == nil
}

// NewTransactionID returns a fresh loan identifier. A random UUID keeps ids
// unique even when several loans are issued within the same clock tick.
func NewTransactionID() string {
	return "TXN-" + uuid.NewString()
}
