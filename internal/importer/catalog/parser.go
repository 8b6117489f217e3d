package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "libris/internal/encoding"
	"libris/internal/library"
)

// Parser reads CSV exports of book catalogs and member rosters. Which kind
// a file holds is auto-detected by matching column headers against known
// profiles, so librarians can feed exports from other systems unchanged.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]*library.Book, []*library.Member, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	prof, cols, headerIdx := detectProfile(rows)
	if prof == nil {
		return nil, nil, fmt.Errorf("no matching import format: expected a book catalog (ID, Title, Author) or member roster (ID, Name) header")
	}

	dataRows := rows[headerIdx+1:]

	switch prof.kind {
	case kindBooks:
		books, err := parseBooks(cols, dataRows, headerIdx)
		return books, nil, err
	case kindMembers:
		members, err := parseMembers(cols, dataRows, headerIdx)
		return nil, members, err
	}

	return nil, nil, nil
}

// sniffDelimiter picks the separator by counting candidates in the first
// line. Exports in the wild use either comma or semicolon.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}

	return ','
}

type kind int

const (
	kindBooks kind = iota
	kindMembers
)

type profile struct {
	kind     kind
	required []string
}

var profiles = []profile{
	{kind: kindBooks, required: []string{"id", "title", "author"}},
	{kind: kindMembers, required: []string{"id", "name"}},
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header matching a known profile. Returns
// the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *profile, cols colIndex) bool {
	for _, name := range p.required {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseBooks(cols colIndex, rows [][]string, headerIdx int) ([]*library.Book, error) {
	idIdx := cols["id"]
	titleIdx := cols["title"]
	authorIdx := cols["author"]
	isbnIdx, hasISBN := cols["isbn"]
	addedIdx, hasAdded := cols["added_date"]

	var books []*library.Book

	for i, row := range rows {
		rowNum := headerIdx + i + 2 // 1-based file line, skipping header

		if emptyRow(row) {
			continue
		}

		book := &library.Book{
			ID:     cellValue(row, idIdx),
			Title:  cellValue(row, titleIdx),
			Author: cellValue(row, authorIdx),
			Status: library.BookAvailable,
		}

		if book.ID == "" || book.Title == "" || book.Author == "" {
			return nil, fmt.Errorf("row %d: id, title and author are required", rowNum)
		}

		if hasISBN {
			book.ISBN = cellValue(row, isbnIdx)
		}

		if hasAdded {
			added, err := parseDateCell(row, addedIdx, "added_date", rowNum)
			if err != nil {
				return nil, err
			}

			book.AddedDate = added
		}

		books = append(books, book)
	}

	return books, nil
}

func parseMembers(cols colIndex, rows [][]string, headerIdx int) ([]*library.Member, error) {
	idIdx := cols["id"]
	nameIdx := cols["name"]
	emailIdx, hasEmail := cols["email"]
	phoneIdx, hasPhone := cols["phone"]
	joinIdx, hasJoin := cols["join_date"]

	var members []*library.Member

	for i, row := range rows {
		rowNum := headerIdx + i + 2

		if emptyRow(row) {
			continue
		}

		member := &library.Member{
			ID:   cellValue(row, idIdx),
			Name: cellValue(row, nameIdx),
		}

		if member.ID == "" || member.Name == "" {
			return nil, fmt.Errorf("row %d: id and name are required", rowNum)
		}

		if hasEmail {
			member.Email = cellValue(row, emailIdx)
		}

		if hasPhone {
			member.Phone = cellValue(row, phoneIdx)
		}

		if hasJoin {
			joined, err := parseDateCell(row, joinIdx, "join_date", rowNum)
			if err != nil {
				return nil, err
			}

			member.JoinDate = joined
		}

		members = append(members, member)
	}

	return members, nil
}

// parseDateCell reads an optional date column. An empty cell yields the
// zero time, which callers replace with the import timestamp.
func parseDateCell(row []string, idx int, name string, rowNum int) (time.Time, error) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("row %d: %s must be YYYY-MM-DD", rowNum, name)
	}

	return t, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
