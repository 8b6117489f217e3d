package catalog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"libris/internal/export"
	"libris/internal/importer/catalog"
	"libris/internal/library"
)

func TestParser_BookCatalog(t *testing.T) {
	input := strings.Join([]string{
		"ID,Title,Author,ISBN",
		"BK-1,The Left Hand of Darkness,Ursula K. Le Guin,978-0441478125",
		"BK-2,Invisible Cities,Italo Calvino,",
		"",
	}, "\n")

	books, members, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Nil(t, members)
	require.Len(t, books, 2)

	assert.Equal(t, "BK-1", books[0].ID)
	assert.Equal(t, "The Left Hand of Darkness", books[0].Title)
	assert.Equal(t, "978-0441478125", books[0].ISBN)
	assert.Equal(t, library.BookAvailable, books[0].Status)

	assert.Equal(t, "BK-2", books[1].ID)
	assert.Empty(t, books[1].ISBN)
}

func TestParser_MemberRoster(t *testing.T) {
	input := strings.Join([]string{
		"ID,Name,Email,Phone",
		"MEM-1,Ada Lovelace,ada@example.org,555-0100",
		"MEM-2,Grace Hopper,,",
	}, "\n")

	books, members, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Nil(t, books)
	require.Len(t, members, 2)

	assert.Equal(t, "MEM-1", members[0].ID)
	assert.Equal(t, "ada@example.org", members[0].Email)
	assert.Equal(t, "555-0100", members[0].Phone)
	assert.Empty(t, members[1].Email)
}

func TestParser_DateColumns(t *testing.T) {
	input := strings.Join([]string{
		"ID,Title,Author,ISBN,Added_Date",
		"BK-1,Dune,Frank Herbert,,2024-01-05",
		"BK-2,Emma,Jane Austen,,",
	}, "\n")

	books, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), books[0].AddedDate)
	assert.True(t, books[1].AddedDate.IsZero())
}

func TestParser_BadDateColumn(t *testing.T) {
	input := "ID,Name,Join_Date\nMEM-1,Ada Lovelace,05/01/2024\n"

	_, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "join_date")
}

func TestParser_ExportRoundTrip(t *testing.T) {
	// An exported catalog must re-import with its dates intact.
	ctrl := gomock.NewController(t)
	repo := library.NewMockRepository(ctrl)

	added := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().LoadBooks(gomock.Any()).Return([]*library.Book{
		{ID: "BK-1", Title: "Dune", Author: "Frank Herbert", AddedDate: added},
	}, nil)
	repo.EXPECT().LoadTransactions(gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer
	svc := export.NewService(library.NewService(repo))
	require.NoError(t, svc.WriteBooksCSV(context.Background(), &buf))

	books, _, err := catalog.NewParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, added, books[0].AddedDate)
}

func TestParser_SemicolonDelimiter(t *testing.T) {
	input := "ID;Title;Author\nBK-9;Don Quijote;Cervantes\n"

	books, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Don Quijote", books[0].Title)
}

func TestParser_PreambleBeforeHeader(t *testing.T) {
	// Vendor exports often put report metadata above the real header.
	input := strings.Join([]string{
		"Catalog export,2024-03-01,,",
		",,,",
		"ID,Title,Author,ISBN",
		"BK-7,Kindred,Octavia Butler,978-0807083697",
	}, "\n")

	books, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "BK-7", books[0].ID)
}

func TestParser_Windows1252Title(t *testing.T) {
	// "Crónica" with Windows-1252 ó (0xF3).
	var buf bytes.Buffer
	buf.WriteString("ID,Title,Author\nBK-3,Cr")
	buf.WriteByte(0xF3)
	buf.WriteString("nica,M")
	buf.WriteByte(0xE1)
	buf.WriteString("rquez\n")

	books, _, err := catalog.NewParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Crónica", books[0].Title)
	assert.Equal(t, "Márquez", books[0].Author)
}

func TestParser_MissingRequiredField(t *testing.T) {
	input := "ID,Title,Author\nBK-1,,Le Guin\n"

	_, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParser_UnknownHeader(t *testing.T) {
	input := "Foo,Bar\n1,2\n"

	_, _, err := catalog.NewParser().Parse(strings.NewReader(input))
	assert.Error(t, err)
}
