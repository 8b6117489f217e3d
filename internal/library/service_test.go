package library_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"libris/internal/library"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func availableBook(id string) *library.Book {
	return &library.Book{
		ID:        id,
		Title:     "The Go Programming Language",
		Author:    "Donovan & Kernighan",
		Status:    library.BookAvailable,
		AddedDate: date(2023, 6, 1),
	}
}

func member(id string) *library.Member {
	return &library.Member{
		ID:       id,
		Name:     "Ada Lovelace",
		JoinDate: date(2023, 1, 1),
	}
}

func openLoan(bookID, memberID string, issued time.Time) *library.Transaction {
	return &library.Transaction{
		ID:        library.NewTransactionID(),
		BookID:    bookID,
		MemberID:  memberID,
		IssueDate: issued,
		Status:    library.TransactionIssued,
	}
}

func TestService_UpsertBook(t *testing.T) {
	type testCase struct {
		name      string
		book      *library.Book
		setupMock func(m *library.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "CreateAppends",
			book: availableBook("BK-1"),
			setupMock: func(m *library.MockRepository) {
				m.EXPECT().LoadBooks(gomock.Any()).Return(nil, nil)
				m.EXPECT().
					SaveBooks(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, books []*library.Book) error {
						assert.Len(t, books, 1)
						assert.Equal(t, "BK-1", books[0].ID)
						assert.Equal(t, library.BookAvailable, books[0].Status)
						return nil
					})
			},
		},
		{
			name: "InvalidIDFormat",
			book: &library.Book{ID: "book-1", Title: "T", Author: "A", AddedDate: date(2024, 1, 1)},
			setupMock: func(m *library.MockRepository) {
			},
			wantErr: library.ErrValidation,
		},
		{
			name: "MissingTitle",
			book: &library.Book{ID: "BK-1", Author: "A", AddedDate: date(2024, 1, 1)},
			setupMock: func(m *library.MockRepository) {
			},
			wantErr: library.ErrValidation,
		},
		{
			name: "MissingAddedDateOnCreate",
			book: &library.Book{ID: "BK-1", Title: "T", Author: "A"},
			setupMock: func(m *library.MockRepository) {
				m.EXPECT().LoadBooks(gomock.Any()).Return(nil, nil)
			},
			wantErr: library.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := library.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := library.NewService(repo)
			err := svc.UpsertBook(context.Background(), tt.book)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_UpsertBook_ReplaceKeepsOrderAndAddedDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	svc := library.NewService(repo)

	first := availableBook("BK-1")
	second := availableBook("BK-2")
	second.Status = library.BookIssued

	repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{first, second}, nil)
	repo.EXPECT().
		SaveBooks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, books []*library.Book) error {
			require.Len(t, books, 2)
			assert.Equal(t, "BK-1", books[0].ID)
			assert.Equal(t, "BK-2", books[1].ID)
			assert.Equal(t, "Second Edition", books[1].Title)
			// Immutable fields survive the replace.
			assert.Equal(t, second.AddedDate, books[1].AddedDate)
			assert.Equal(t, library.BookIssued, books[1].Status)
			return nil
		})

	update := &library.Book{ID: "BK-2", Title: "Second Edition", Author: "Someone Else"}
	require.NoError(t, svc.UpsertBook(context.Background(), update))
}

func TestService_DeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("OpenLoanBlocksDelete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).
			Return([]*library.Transaction{openLoan("BK-1", "MEM-1", date(2024, 1, 1))}, nil)

		err := library.NewService(repo).DeleteBook(ctx, "BK-1")
		assert.ErrorIs(t, err, library.ErrConflict)
	})

	t.Run("ClosedLoanAllowsDelete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		returned := date(2024, 1, 15)
		loan := openLoan("BK-1", "MEM-1", date(2024, 1, 1))
		loan.ReturnDate = &returned
		loan.Status = library.TransactionReturned

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).Return([]*library.Transaction{loan}, nil)
		repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{availableBook("BK-1")}, nil)
		repo.EXPECT().
			SaveBooks(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, books []*library.Book) error {
				assert.Empty(t, books)
				return nil
			})

		assert.NoError(t, library.NewService(repo).DeleteBook(ctx, "BK-1"))
	})

	t.Run("UnknownIDIsNoOp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)
		repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{availableBook("BK-2")}, nil)

		// No SaveBooks expected.
		assert.NoError(t, library.NewService(repo).DeleteBook(ctx, "BK-404"))
	})
}

func TestService_DeleteMember_WithActiveLoan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadTransactions(gomock.Any()).
		Return([]*library.Transaction{openLoan("BK-1", "MEM-1", date(2024, 1, 1))}, nil)

	err := library.NewService(repo).DeleteMember(context.Background(), "MEM-1")
	assert.ErrorIs(t, err, library.ErrConflict)
}

func TestService_IssueBook_ZeroIssueDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)

	_, err := library.NewService(repo).IssueBook(context.Background(), "BK-1", "MEM-1", time.Time{})
	assert.ErrorIs(t, err, library.ErrValidation)
}

func TestService_IssueBook_UnknownBook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadBooks(gomock.Any()).Return(nil, nil)
	repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)

	_, err := library.NewService(repo).IssueBook(context.Background(), "BK-1", "MEM-1", date(2024, 1, 1))
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestService_IssueBook_UnknownMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{availableBook("BK-1")}, nil)
	repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)
	repo.EXPECT().LoadMembers(gomock.Any()).Return(nil, nil)

	_, err := library.NewService(repo).IssueBook(context.Background(), "BK-1", "MEM-1", date(2024, 1, 1))
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestService_IssueBook_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	issueDate := date(2024, 1, 1)

	repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{availableBook("BK-1")}, nil)
	repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)
	repo.EXPECT().LoadMembers(gomock.Any()).Return([]*library.Member{member("MEM-1")}, nil)

	// The transaction record is the source of truth and must hit the
	// repository before the book status does.
	gomock.InOrder(
		repo.EXPECT().
			SaveTransactions(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txs []*library.Transaction) error {
				require.Len(t, txs, 1)
				assert.Equal(t, "BK-1", txs[0].BookID)
				assert.Equal(t, "MEM-1", txs[0].MemberID)
				assert.Equal(t, library.TransactionIssued, txs[0].Status)
				assert.Nil(t, txs[0].ReturnDate)
				return nil
			}),
		repo.EXPECT().
			SaveBooks(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, books []*library.Book) error {
				require.Len(t, books, 1)
				assert.Equal(t, library.BookIssued, books[0].Status)
				return nil
			}),
	)

	loan, err := library.NewService(repo).IssueBook(context.Background(), "BK-1", "MEM-1", issueDate)
	require.NoError(t, err)
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, issueDate, loan.IssueDate)
}

func TestService_IssueBook_AlreadyIssued(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The stored book record claims it is available; the open transaction
	// says otherwise and wins.
	stale := availableBook("BK-1")

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{stale}, nil)
	repo.EXPECT().LoadTransactions(gomock.Any()).
		Return([]*library.Transaction{openLoan("BK-1", "MEM-2", date(2024, 1, 1))}, nil)
	repo.EXPECT().LoadMembers(gomock.Any()).Return([]*library.Member{member("MEM-1")}, nil)

	_, err := library.NewService(repo).IssueBook(context.Background(), "BK-1", "MEM-1", date(2024, 1, 2))
	assert.ErrorIs(t, err, library.ErrConflict)
}

func TestService_ReturnBook(t *testing.T) {
	ctx := context.Background()

	t.Run("ClosesLoanAndFreesBook", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		loan := openLoan("BK-1", "MEM-1", date(2024, 1, 1))
		issued := availableBook("BK-1")
		issued.Status = library.BookIssued
		returnDate := date(2024, 1, 15)

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).Return([]*library.Transaction{loan}, nil)

		gomock.InOrder(
			repo.EXPECT().
				SaveTransactions(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, txs []*library.Transaction) error {
					require.Len(t, txs, 1)
					assert.Equal(t, library.TransactionReturned, txs[0].Status)
					require.NotNil(t, txs[0].ReturnDate)
					assert.Equal(t, returnDate, *txs[0].ReturnDate)
					return nil
				}),
			repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{issued}, nil),
			repo.EXPECT().
				SaveBooks(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, books []*library.Book) error {
					assert.Equal(t, library.BookAvailable, books[0].Status)
					return nil
				}),
		)

		got, err := library.NewService(repo).ReturnBook(ctx, "BK-1", returnDate)
		require.NoError(t, err)
		assert.Equal(t, loan.ID, got.ID)
	})

	t.Run("NotIssued", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)

		_, err := library.NewService(repo).ReturnBook(ctx, "BK-1", date(2024, 1, 15))
		assert.ErrorIs(t, err, library.ErrNotFound)
	})

	t.Run("MultipleOpenLoansIsCorruptState", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := library.NewMockRepository(ctrl)
		repo.EXPECT().LoadTransactions(gomock.Any()).Return([]*library.Transaction{
			openLoan("BK-1", "MEM-1", date(2024, 1, 1)),
			openLoan("BK-1", "MEM-2", date(2024, 1, 2)),
		}, nil)

		// No writes: corrupt data must not be touched.
		_, err := library.NewService(repo).ReturnBook(ctx, "BK-1", date(2024, 1, 15))
		assert.ErrorIs(t, err, library.ErrCorruptState)
	})
}

// TestService_IssueReturnCycle walks the issue -> double-issue -> return ->
// delete sequence against a fake in-memory repository to check that book
// status and the open-loan set stay consistent across operations.
func TestService_IssueReturnCycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := library.NewService(repo)

	require.NoError(t, svc.UpsertBook(ctx, availableBook("BK-1")))
	require.NoError(t, svc.UpsertMember(ctx, member("MEM-1")))

	loan, err := svc.IssueBook(ctx, "BK-1", "MEM-1", date(2024, 1, 1))
	require.NoError(t, err)

	book, err := svc.GetBook(ctx, "BK-1")
	require.NoError(t, err)
	assert.Equal(t, library.BookIssued, book.Status)

	_, err = svc.IssueBook(ctx, "BK-1", "MEM-1", date(2024, 1, 2))
	assert.ErrorIs(t, err, library.ErrConflict)

	err = svc.DeleteMember(ctx, "MEM-1")
	assert.ErrorIs(t, err, library.ErrConflict)

	got, err := svc.ReturnBook(ctx, "BK-1", date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)

	book, err = svc.GetBook(ctx, "BK-1")
	require.NoError(t, err)
	assert.Equal(t, library.BookAvailable, book.Status)

	_, err = svc.ReturnBook(ctx, "BK-1", date(2024, 1, 16))
	assert.ErrorIs(t, err, library.ErrNotFound)

	require.NoError(t, svc.DeleteBook(ctx, "BK-1"))

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestService_ListOverdue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	asOf := date(2024, 2, 1)
	old := openLoan("BK-1", "MEM-1", date(2024, 1, 1))   // 31 days out
	recent := openLoan("BK-2", "MEM-1", date(2024, 1, 25)) // 7 days out

	returned := date(2024, 1, 30)
	closed := openLoan("BK-3", "MEM-2", date(2023, 12, 1))
	closed.ReturnDate = &returned
	closed.Status = library.TransactionReturned

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadTransactions(gomock.Any()).
		Return([]*library.Transaction{old, recent, closed}, nil)

	seq, err := library.NewService(repo).ListOverdue(context.Background(), asOf, 0)
	require.NoError(t, err)

	var got []*library.Transaction
	for tx := range seq {
		got = append(got, tx)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "BK-1", got[0].BookID)

	// The sequence is restartable without another repository read.
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestService_ListTransactions_StatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	returnDate := date(2024, 1, 20)
	closed := openLoan("BK-2", "MEM-1", date(2024, 1, 5))
	closed.ReturnDate = &returnDate
	closed.Status = library.TransactionReturned

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadTransactions(gomock.Any()).
		Return([]*library.Transaction{openLoan("BK-1", "MEM-1", date(2024, 1, 1)), closed}, nil)

	status := library.TransactionIssued
	got, err := library.NewService(repo).ListTransactions(context.Background(), library.ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BK-1", got[0].BookID)
}

func TestService_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := library.NewMockRepository(ctrl)
	repo.EXPECT().LoadBooks(gomock.Any()).Return(nil, errors.New("disk error"))

	_, err := library.NewService(repo).ListBooks(context.Background())
	assert.Error(t, err)
}

// fakeRepo is a minimal in-memory Repository for multi-step scenarios
// where scripting every mock call would obscure the behavior under test.
type fakeRepo struct {
	books   []*library.Book
	members []*library.Member
	txs     []*library.Transaction
}

func newFakeRepo() *fakeRepo { return &fakeRepo{} }

func (f *fakeRepo) LoadBooks(context.Context) ([]*library.Book, error) { return f.books, nil }

func (f *fakeRepo) SaveBooks(_ context.Context, books []*library.Book) error {
	f.books = books
	return nil
}

func (f *fakeRepo) LoadMembers(context.Context) ([]*library.Member, error) { return f.members, nil }

func (f *fakeRepo) SaveMembers(_ context.Context, members []*library.Member) error {
	f.members = members
	return nil
}

func (f *fakeRepo) LoadTransactions(context.Context) ([]*library.Transaction, error) {
	return f.txs, nil
}

func (f *fakeRepo) SaveTransactions(_ context.Context, txs []*library.Transaction) error {
	f.txs = txs
	return nil
}
