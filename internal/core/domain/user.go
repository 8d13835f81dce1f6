package domain

import (
	"strings"
	"time"
)

// Identity is the authenticated user as returned by the backend.
// Treat it as immutable once issued; use Clone before handing it out.
type Identity struct {
	ID        int64  `json:"id" bson:"id"`
	Nom       string `json:"nom" bson:"nom"`
	Prenom    string `json:"prenom" bson:"prenom"`
	Email     string `json:"email" bson:"email"`
	Telephone string `json:"telephone,omitempty" bson:"telephone,omitempty"`
	Role      Role   `json:"role" bson:"role"`
	IsActive  bool   `json:"is_active" bson:"is_active"`
}

// Clone returns a copy, or nil for a nil receiver.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// FullName is "Prenom Nom", trimmed.
func (i *Identity) FullName() string {
	if i == nil {
		return ""
	}
	return strings.TrimSpace(i.Prenom + " " + i.Nom)
}

// Session pairs an identity with its bearer token.
// A zero ExpiresAt means the expiry is unknown.
type Session struct {
	Identity  *Identity `json:"user"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ExpiresWithin reports whether a known expiry falls within d of now.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(now.Add(d))
}

// ProfileUpdate carries the editable profile fields. Empty fields are
// omitted from the request.
type ProfileUpdate struct {
	Nom       string `json:"nom,omitempty" validate:"omitempty,max=100"`
	Prenom    string `json:"prenom,omitempty" validate:"omitempty,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Telephone string `json:"telephone,omitempty" validate:"omitempty,max=30"`
}

// PasswordChange is the payload of POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}
