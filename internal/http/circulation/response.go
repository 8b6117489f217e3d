package circulation

import (
	"time"

	"libris/internal/library"
)

type transactionResponse struct {
	ID         string                    `json:"id"`
	BookID     string                    `json:"book_id"`
	MemberID   string                    `json:"member_id"`
	IssueDate  time.Time                 `json:"issue_date"`
	ReturnDate *time.Time                `json:"return_date,omitempty"`
	Status     library.TransactionStatus `json:"status"`
}

func toResponse(t *library.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		BookID:     t.BookID,
		MemberID:   t.MemberID,
		IssueDate:  t.IssueDate,
		ReturnDate: t.ReturnDate,
		Status:     t.Status,
	}
}

func toResponseList(txs []*library.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toResponse(t)
	}

	return resp
}
