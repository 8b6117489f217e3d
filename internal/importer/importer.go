package importer

import (
	"io"

	"libris/internal/library"
)

// Batch is the outcome of parsing one import file. A file holds either a
// book catalog or a member roster; which one is decided by its header.
type Batch struct {
	Books   []*library.Book
	Members []*library.Member
}

type Parser interface {
	Parse(r io.Reader) ([]*library.Book, []*library.Member, error)
}
