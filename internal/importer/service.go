package importer

import (
	"io"

	"libris/internal/importer/catalog"
)

// Service parses bulk import files into batches of records. Validation and
// invariant checks stay with the library service; every parsed row goes
// through the same upsert path as a hand-entered one.
type Service struct {
	csvParser Parser
}

func NewService() *Service {
	return &Service{
		csvParser: catalog.NewParser(),
	}
}

func (s *Service) Parse(r io.Reader) (*Batch, error) {
	books, members, err := s.csvParser.Parse(r)
	if err != nil {
		return nil, err
	}

	return &Batch{Books: books, Members: members}, nil
}
