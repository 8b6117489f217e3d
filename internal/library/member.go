package library

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// memberIDPattern is the canonical member id format, mirroring the book
// id scheme with a MEM- prefix.
var memberIDPattern = regexp.MustCompile(`^MEM-[A-Za-z0-9]+$`)

// Member represents a registered library member.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	JoinDate time.Time `json:"joinDate"`
}

// Validate checks the fields required on every member record.
func (m *Member) Validate() error {
	if !memberIDPattern.MatchString(m.ID) {
		return fmt.Errorf("%w: member id %q must match %s", ErrValidation, m.ID, memberIDPattern)
	}

	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: member name is required", ErrValidation)
	}

	return nil
}
