package ports

import (
	"context"
	"time"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// ConsultationRepository defines persistence for consultation leads.
type ConsultationRepository interface {
	Create(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error)
	FindByID(ctx context.Context, id string) (*domain.Consultation, error)
	List(ctx context.Context) ([]*domain.Consultation, error)
	Update(ctx context.Context, c *domain.Consultation) error
	Delete(ctx context.Context, id string) error

	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.ConsultationStatus) (int64, error)
	MonthlyCounts(ctx context.Context, since time.Time) ([]MonthCount, error)
}

// CreateConsultationInput is the public contact-form submission.
type CreateConsultationInput struct {
	Name    string
	Email   string
	Phone   string
	Project string
	Message string
}

// UpdateConsultationInput carries the admin-editable fields. Nil/empty fields
// are left unchanged.
type UpdateConsultationInput struct {
	ID               string
	Status           string
	ConsultationDate *time.Time
	Notes            string
}

// ConsultationService covers lead intake and back-office management.
type ConsultationService interface {
	Create(ctx context.Context, input CreateConsultationInput) (*domain.Consultation, error)
	Get(ctx context.Context, id string) (*domain.Consultation, error)
	List(ctx context.Context) ([]*domain.Consultation, error)
	Update(ctx context.Context, input UpdateConsultationInput) (*domain.Consultation, error)
	Delete(ctx context.Context, id string) error
}
