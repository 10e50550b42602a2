package ports

import (
	"context"
	"time"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// MonthCount is one bucket of a per-month aggregation.
type MonthCount struct {
	Year  int
	Month int
	Count int64
}

// AccountRepository defines persistence for account records.
//
// Token-consuming lookups (FindByVerification, FindByResetToken,
// FindByPendingEmail) match on the stored token value, and expiry where one
// exists, so a cleared or expired token can never match.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)

	FindByVerification(ctx context.Context, email, token string) (*domain.Account, error)
	MarkVerified(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, id, name, phone, address string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.Account, error)
	// ResetPassword stores the new hash and clears both reset fields in one write.
	ResetPassword(ctx context.Context, id, passwordHash string) error

	SetPendingEmail(ctx context.Context, id, email, token string, expires time.Time) error
	FindByPendingEmail(ctx context.Context, email, token string, now time.Time) (*domain.Account, error)
	// CommitEmailChange promotes pending_email to email and clears all three
	// pending fields in one write.
	CommitEmailChange(ctx context.Context, id string) error

	SetRole(ctx context.Context, id, role string) error
	// SetRoleGuarded demotes an admin, failing with domain.ErrLastAdmin when the
	// target is the only admin. Check and mutation run in one transaction.
	SetRoleGuarded(ctx context.Context, id, role string) error
	// DeleteGuarded deletes an account, failing with domain.ErrLastAdmin when the
	// target is the only admin. Check and mutation run in one transaction.
	DeleteGuarded(ctx context.Context, id string) error

	CountAll(ctx context.Context) (int64, error)
	CountAdmins(ctx context.Context) (int64, error)
	MonthlyCounts(ctx context.Context, since time.Time) ([]MonthCount, error)
}
