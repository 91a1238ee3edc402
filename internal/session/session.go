package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller's role as issued by the backend.
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleClient  Role = "CLIENT"
)

var ErrInvalidToken = errors.New("invalid token")

// ParseRole normalizes a raw role string. Unknown roles are kept verbatim
// so they simply match no gate.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MANAGER":
		return RoleManager
	case "CLIENT":
		return RoleClient
	default:
		return Role(s)
	}
}

// Session is the authenticated identity injected into every backend call.
// It is built once per login and read-only afterwards; only the login or
// logout flow replaces it.
type Session struct {
	Token  string
	Role   Role
	UserID string
}

// New builds a session from explicit login response fields.
func New(token string, role Role, userID string) Session {
	return Session{Token: token, Role: role, UserID: userID}
}

// FromToken derives a session from a bearer token alone by decoding the
// JWT claims without verifying the signature. The backend is the one
// verifying tokens; the client only needs role and user id for gating
// and display.
func FromToken(token string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, _ := claims["role"].(string)
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}

	return Session{
		Token:  token,
		Role:   ParseRole(role),
		UserID: userID,
	}, nil
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// IsManager reports whether the session may drive reservation lifecycles.
func (s Session) IsManager() bool {
	return s.Role == RoleManager
}
