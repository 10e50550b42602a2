package ports

import (
	"context"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// RegisterInput carries all data needed to create a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Account *domain.Account
	Token   string
	// EmailSent is false when the verification mail could not be delivered.
	// Registration still succeeds; the caller reports degraded success.
	EmailSent bool
}

// UpdateProfileInput carries a profile update. Empty fields are left unchanged.
type UpdateProfileInput struct {
	AccountID                string
	Name                     string
	Email                    string
	Phone                    string
	Address                  string
	RequireEmailVerification bool
}

// ProfileResult is returned by UpdateProfile. When the email is being changed,
// Account still carries the current address and RequiresEmailVerification is
// true until the pending email is confirmed.
type ProfileResult struct {
	Account                   *domain.Account
	RequiresEmailVerification bool
}

// AccountService defines the account lifecycle use cases.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	VerifyEmail(ctx context.Context, email, token string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*ProfileResult, error)
	VerifyEmailChange(ctx context.Context, email, token string) error
	DeleteAccount(ctx context.Context, accountID string) error
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
}
