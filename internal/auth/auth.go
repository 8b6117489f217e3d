package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level carried by a session token.
type Role string

const (
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Claims is the session token payload.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type credential struct {
	password string
	role     Role
}

// Service is a toy session provider: static credentials, HS256 tokens with
// a role claim. It stands in for a real identity system so the UI can gate
// librarian-only operations; it is not a security boundary.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  map[string]credential
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		users:  make(map[string]credential),
	}
}

// RegisterCredential adds a username/password pair with the given role.
func (s *Service) RegisterCredential(username, password string, role Role) {
	s.users[username] = credential{password: password, role: role}
}

// Login checks the credentials and returns a signed session token.
func (s *Service) Login(username, password string) (string, error) {
	cred, ok := s.users[username]
	if !ok || cred.password != password {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(username, cred.role)
}

// IssueToken signs a session token for the subject with the given role.
func (s *Service) IssueToken(subject string, role Role) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

// Verify parses and validates a session token and returns its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}

	return claims, nil
}

// IsAuthenticated reports whether the token is a valid, unexpired session.
func (s *Service) IsAuthenticated(tokenString string) bool {
	_, err := s.Verify(tokenString)
	return err == nil
}

// CurrentRole returns the role carried by the token, or an error when the
// session is invalid.
func (s *Service) CurrentRole(tokenString string) (Role, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}

	return claims.Role, nil
}
