package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"libris/internal/library"
	"libris/internal/library/store"
)

func openTestDB(t *testing.T) *bbolt.DB {
	t.Helper()

	db, err := bbolt.Open(filepath.Join(t.TempDir(), "library.db"), 0o600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestStore_EmptyDatabase(t *testing.T) {
	s := store.New(openTestDB(t))
	ctx := context.Background()

	books, err := s.LoadBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	members, err := s.LoadMembers(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	txs, err := s.LoadTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestStore_RoundTripPreservesOrder(t *testing.T) {
	s := store.New(openTestDB(t))
	ctx := context.Background()

	added := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	books := []*library.Book{
		{ID: "BK-3", Title: "C", Author: "x", Status: library.BookAvailable, AddedDate: added},
		{ID: "BK-1", Title: "A", Author: "y", ISBN: "978-0134190440", Status: library.BookIssued, AddedDate: added},
		{ID: "BK-2", Title: "B", Author: "z", Status: library.BookAvailable, AddedDate: added},
	}

	require.NoError(t, s.SaveBooks(ctx, books))

	got, err := s.LoadBooks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := range books {
		assert.Equal(t, books[i].ID, got[i].ID)
		assert.Equal(t, books[i].Title, got[i].Title)
		assert.Equal(t, books[i].ISBN, got[i].ISBN)
		assert.Equal(t, books[i].Status, got[i].Status)
		assert.True(t, books[i].AddedDate.Equal(got[i].AddedDate))
	}
}

func TestStore_TransactionRoundTrip(t *testing.T) {
	s := store.New(openTestDB(t))
	ctx := context.Background()

	returned := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	txs := []*library.Transaction{
		{
			ID:        library.NewTransactionID(),
			BookID:    "BK-1",
			MemberID:  "MEM-1",
			IssueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Status:    library.TransactionIssued,
		},
		{
			ID:         library.NewTransactionID(),
			BookID:     "BK-2",
			MemberID:   "MEM-1",
			IssueDate:  time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			ReturnDate: &returned,
			Status:     library.TransactionReturned,
		},
	}

	require.NoError(t, s.SaveTransactions(ctx, txs))

	got, err := s.LoadTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, txs[0].ID, got[0].ID)
	assert.Nil(t, got[0].ReturnDate)
	require.NotNil(t, got[1].ReturnDate)
	assert.True(t, returned.Equal(*got[1].ReturnDate))
	assert.Equal(t, library.TransactionReturned, got[1].Status)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := store.New(openTestDB(t))
	ctx := context.Background()

	joined := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []*library.Member{
		{ID: "MEM-1", Name: "Ada", JoinDate: joined},
		{ID: "MEM-2", Name: "Grace", JoinDate: joined},
	}

	require.NoError(t, s.SaveMembers(ctx, members))
	require.NoError(t, s.SaveMembers(ctx, members[:1]))

	got, err := s.LoadMembers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MEM-1", got[0].ID)
}

func TestStore_MalformedJSONIsCorruptState(t *testing.T) {
	db := openTestDB(t)
	s := store.New(db)

	err := db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("library"))
		if err != nil {
			return err
		}

		return b.Put([]byte("library-books"), []byte("{not json"))
	})
	require.NoError(t, err)

	_, err = s.LoadBooks(context.Background())
	assert.ErrorIs(t, err, library.ErrCorruptState)
}
