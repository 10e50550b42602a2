package ports

import (
	"context"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// CreateAccountInput is used by the admin panel to create accounts directly.
// Accounts created this way are pre-verified.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	Address  string
}

// MonthlyStat is one month of dashboard activity.
type MonthlyStat struct {
	Month         string `json:"month"`
	Consultations int64  `json:"consultations"`
	Users         int64  `json:"users"`
}

// StatsResult aggregates the dashboard counters.
type StatsResult struct {
	TotalUsers             int64         `json:"total_users"`
	TotalConsultations     int64         `json:"total_consultations"`
	PendingConsultations   int64         `json:"pending_consultations"`
	CompletedConsultations int64         `json:"completed_consultations"`
	MonthlyStats           []MonthlyStat `json:"monthly_stats"`
}

// AdminService covers the admin panel: user management under the last-admin
// invariant, and dashboard aggregates.
type AdminService interface {
	Stats(ctx context.Context) (*StatsResult, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, targetID, callerID string) error
	Promote(ctx context.Context, targetID string) error
	Demote(ctx context.Context, targetID, callerID string) error
	IsLastAdmin(ctx context.Context, accountID string) (bool, error)
}
