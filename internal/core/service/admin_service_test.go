package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

func newTestAdminService(accounts *memAccountRepo, consultations *memConsultationRepo) *AdminService {
	return NewAdminService(accounts, consultations, zerolog.Nop())
}

func seedAccount(t *testing.T, repo *memAccountRepo, email, role string) *domain.Account {
	t.Helper()
	account, err := repo.Create(context.Background(), &domain.Account{
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return account
}

func TestAdminCreateAccount_PreVerified(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())

	account, err := svc.CreateAccount(context.Background(), ports.CreateAccountInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "pw12345678",
		Phone:    "555-0100",
		Address:  "2 Side St",
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if !account.IsVerified {
		t.Fatalf("admin-created account should be pre-verified")
	}
	if account.Role != domain.RoleUser {
		t.Fatalf("role = %q, want default user", account.Role)
	}
	if account.VerificationToken != "" {
		t.Fatalf("admin-created account should carry no verification token")
	}
}

func TestAdminCreateAccount_RejectsUnknownRole(t *testing.T) {
	svc := newTestAdminService(newMemAccountRepo(), newMemConsultationRepo())

	_, err := svc.CreateAccount(context.Background(), ports.CreateAccountInput{
		Name:     "Carol",
		Email:    "carol@example.com",
		Password: "pw12345678",
		Role:     "superuser",
		Phone:    "555-0100",
		Address:  "2 Side St",
	})
	if err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestAdminDelete_OtherUser(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	user := seedAccount(t, repo, "user@example.com", domain.RoleUser)

	if err := svc.DeleteAccount(context.Background(), user.ID, admin.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), user.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("account still present after delete")
	}
}

func TestAdminDelete_SelfRejected(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	seedAccount(t, repo, "admin2@example.com", domain.RoleAdmin)

	// Two admins exist, so the refusal is about the admin path, not last-admin.
	if err := svc.DeleteAccount(context.Background(), admin.ID, admin.ID); !errors.Is(err, domain.ErrSelfDeletion) {
		t.Fatalf("expected ErrSelfDeletion, got %v", err)
	}
}

func TestAdminDelete_SelfAsLastAdmin(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)

	if err := svc.DeleteAccount(context.Background(), admin.ID, admin.ID); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestAdminDelete_LastAdminByAnotherCaller(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	user := seedAccount(t, repo, "user@example.com", domain.RoleUser)

	if err := svc.DeleteAccount(context.Background(), admin.ID, user.ID); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestPromoteAndDemote(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	user := seedAccount(t, repo, "user@example.com", domain.RoleUser)

	if err := svc.Promote(context.Background(), user.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got, _ := repo.FindByID(context.Background(), user.ID); !got.IsAdmin() {
		t.Fatalf("account not promoted")
	}
	if err := svc.Promote(context.Background(), user.ID); !errors.Is(err, domain.ErrAlreadyAdmin) {
		t.Fatalf("expected ErrAlreadyAdmin, got %v", err)
	}

	if err := svc.Demote(context.Background(), user.ID, admin.ID); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if got, _ := repo.FindByID(context.Background(), user.ID); got.IsAdmin() {
		t.Fatalf("account not demoted")
	}
	if err := svc.Demote(context.Background(), user.ID, admin.ID); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestDemote_SelfRejected(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	seedAccount(t, repo, "admin2@example.com", domain.RoleAdmin)

	if err := svc.Demote(context.Background(), admin.ID, admin.ID); !errors.Is(err, domain.ErrSelfDemotion) {
		t.Fatalf("expected ErrSelfDemotion, got %v", err)
	}
}

func TestDemote_LastAdminRejected(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	user := seedAccount(t, repo, "user@example.com", domain.RoleUser)

	if err := svc.Demote(context.Background(), admin.ID, user.ID); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	// Promote a second admin; the demotion then succeeds.
	if err := svc.Promote(context.Background(), user.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := svc.Demote(context.Background(), admin.ID, user.ID); err != nil {
		t.Fatalf("demote with second admin: %v", err)
	}
}

func TestIsLastAdmin(t *testing.T) {
	repo := newMemAccountRepo()
	svc := newTestAdminService(repo, newMemConsultationRepo())
	admin := seedAccount(t, repo, "admin@example.com", domain.RoleAdmin)
	user := seedAccount(t, repo, "user@example.com", domain.RoleUser)

	if last, err := svc.IsLastAdmin(context.Background(), admin.ID); err != nil || !last {
		t.Fatalf("IsLastAdmin(admin) = %v, %v; want true", last, err)
	}
	if last, err := svc.IsLastAdmin(context.Background(), user.ID); err != nil || last {
		t.Fatalf("IsLastAdmin(user) = %v, %v; want false", last, err)
	}

	seedAccount(t, repo, "admin2@example.com", domain.RoleAdmin)
	if last, err := svc.IsLastAdmin(context.Background(), admin.ID); err != nil || last {
		t.Fatalf("IsLastAdmin with two admins = %v, %v; want false", last, err)
	}
}

func TestStats(t *testing.T) {
	accounts := newMemAccountRepo()
	consultations := newMemConsultationRepo()
	svc := newTestAdminService(accounts, consultations)

	now := time.Now().UTC()
	seedAccount(t, accounts, "a@example.com", domain.RoleUser)
	seedAccount(t, accounts, "b@example.com", domain.RoleUser)

	for _, status := range []domain.ConsultationStatus{
		domain.ConsultationPending,
		domain.ConsultationPending,
		domain.ConsultationCompleted,
		domain.ConsultationContacted,
	} {
		if _, err := consultations.Create(context.Background(), &domain.Consultation{
			FullName:    "Lead",
			ProjectType: "Residential",
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			t.Fatalf("seed consultation: %v", err)
		}
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalUsers != 2 {
		t.Fatalf("total users = %d, want 2", stats.TotalUsers)
	}
	if stats.TotalConsultations != 4 {
		t.Fatalf("total consultations = %d, want 4", stats.TotalConsultations)
	}
	if stats.PendingConsultations != 2 {
		t.Fatalf("pending = %d, want 2", stats.PendingConsultations)
	}
	if stats.CompletedConsultations != 1 {
		t.Fatalf("completed = %d, want 1", stats.CompletedConsultations)
	}
	if len(stats.MonthlyStats) != statsMonths {
		t.Fatalf("monthly buckets = %d, want %d", len(stats.MonthlyStats), statsMonths)
	}

	current := stats.MonthlyStats[len(stats.MonthlyStats)-1]
	if current.Month != now.Format("Jan") {
		t.Fatalf("last bucket = %q, want %q", current.Month, now.Format("Jan"))
	}
	if current.Users != 2 || current.Consultations != 4 {
		t.Fatalf("current month counts = %+v", current)
	}
}
