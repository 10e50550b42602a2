package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

const statsMonths = 6

// AdminService implements the back-office user management surface and the
// dashboard aggregates. Role transitions and deletions are gated by the
// last-admin invariant: the store must hold at least one admin at all times.
type AdminService struct {
	accounts      ports.AccountRepository
	consultations ports.ConsultationRepository
	log           zerolog.Logger
}

func NewAdminService(
	accounts ports.AccountRepository,
	consultations ports.ConsultationRepository,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{accounts: accounts, consultations: consultations, log: log}
}

// Stats aggregates the dashboard counters, including per-month registration
// and consultation counts for the trailing six months.
func (s *AdminService) Stats(ctx context.Context) (*ports.StatsResult, error) {
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(statsMonths - 1), 0)

	totalUsers, err := s.accounts.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	totalConsultations, err := s.consultations.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	pending, err := s.consultations.CountByStatus(ctx, domain.ConsultationPending)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	completed, err := s.consultations.CountByStatus(ctx, domain.ConsultationCompleted)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	monthlyConsultations, err := s.consultations.MonthlyCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	monthlyUsers, err := s.accounts.MonthlyCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	monthly := make([]ports.MonthlyStat, 0, statsMonths)
	for i := statsMonths - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthly = append(monthly, ports.MonthlyStat{
			Month:         m.Format("Jan"),
			Consultations: countFor(monthlyConsultations, m),
			Users:         countFor(monthlyUsers, m),
		})
	}

	return &ports.StatsResult{
		TotalUsers:             totalUsers,
		TotalConsultations:     totalConsultations,
		PendingConsultations:   pending,
		CompletedConsultations: completed,
		MonthlyStats:           monthly,
	}, nil
}

func countFor(counts []ports.MonthCount, m time.Time) int64 {
	for _, c := range counts {
		if c.Year == m.Year() && c.Month == int(m.Month()) {
			return c.Count
		}
	}
	return 0
}

// ListAccounts returns all accounts, newest first.
func (s *AdminService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx)
}

// CreateAccount creates an account from the admin panel. These accounts are
// pre-verified and carry no verification token.
func (s *AdminService) CreateAccount(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Phone == "" || input.Address == "" {
		return nil, domain.ErrMissingFields
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, domain.ErrMissingFields
	}

	if _, err := s.accounts.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("create account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create account: hash password: %w", err)
	}

	now := time.Now().UTC()
	account, err := s.accounts.Create(ctx, &domain.Account{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         role,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Str("role", role).Msg("account created by admin")
	return account, nil
}

// DeleteAccount removes another user's account. Deleting yourself through the
// admin panel is rejected; the self-service flow is the only sanctioned path.
func (s *AdminService) DeleteAccount(ctx context.Context, targetID, callerID string) error {
	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.ID == callerID {
		if last, err := s.IsLastAdmin(ctx, target.ID); err != nil {
			return err
		} else if last {
			return domain.ErrLastAdmin
		}
		return domain.ErrSelfDeletion
	}

	if err := s.accounts.DeleteGuarded(ctx, target.ID); err != nil {
		return err
	}

	s.log.Info().Str("account_id", target.ID).Str("deleted_by", callerID).Msg("account deleted by admin")
	return nil
}

// Promote grants the admin role. The admin count only grows, so no last-admin
// concern applies.
func (s *AdminService) Promote(ctx context.Context, targetID string) error {
	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return domain.ErrAlreadyAdmin
	}

	if err := s.accounts.SetRole(ctx, target.ID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("promote: %w", err)
	}

	s.log.Info().Str("account_id", target.ID).Msg("account promoted to admin")
	return nil
}

// Demote revokes the admin role. Self-demotion is rejected outright, and the
// repository re-checks the last-admin invariant atomically with the write.
func (s *AdminService) Demote(ctx context.Context, targetID, callerID string) error {
	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsAdmin() {
		return domain.ErrNotAdmin
	}
	if target.ID == callerID {
		return domain.ErrSelfDemotion
	}

	if err := s.accounts.SetRoleGuarded(ctx, target.ID, domain.RoleUser); err != nil {
		return err
	}

	s.log.Info().Str("account_id", target.ID).Str("demoted_by", callerID).Msg("account demoted")
	return nil
}

// IsLastAdmin reports whether the given account is the only admin in the store.
func (s *AdminService) IsLastAdmin(ctx context.Context, accountID string) (bool, error) {
	count, err := s.accounts.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count != 1 {
		return false, nil
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.IsAdmin(), nil
}
