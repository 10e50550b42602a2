package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already in use")
	ErrVerificationNeeded = errors.New("email change requires verification")
	ErrLastAdmin          = errors.New("last administrator")
	ErrSelfDemotion       = errors.New("cannot demote own account")
	ErrSelfDeletion       = errors.New("cannot delete own account")
	ErrNotAdmin           = errors.New("account is not an administrator")
	ErrAlreadyAdmin       = errors.New("account is already an administrator")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Account models a registered actor: a site visitor with a profile, or an
// administrator of the back office. The password leaves this struct only as
// a bcrypt hash, and the hash itself is excluded from JSON.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Role         string `json:"role"`

	// Initial email verification. The token has no expiry: accounts may
	// verify long after registering.
	IsVerified        bool   `json:"is_verified"`
	VerificationToken string `json:"-"`

	// Pending email change. The three fields are set and cleared together:
	// the account keeps its current email until the change is confirmed.
	PendingEmail       string    `json:"pending_email,omitempty"`
	EmailChangeToken   string    `json:"-"`
	EmailChangeExpires time.Time `json:"-"`

	// Password reset. Token and expiry are set and cleared together.
	ResetToken        string    `json:"-"`
	ResetTokenExpires time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
