package service

import (
	"context"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// ConsultationService implements lead intake from the public contact form and
// the back-office management operations.
type ConsultationService struct {
	repo      ports.ConsultationRepository
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

func NewConsultationService(repo ports.ConsultationRepository, log zerolog.Logger) *ConsultationService {
	return &ConsultationService{
		// Strict policy: the form is public and the details are rendered in
		// the admin panel, so all markup is stripped.
		sanitizer: bluemonday.StrictPolicy(),
		repo:      repo,
		log:       log,
	}
}

// Create stores a new lead with status pending.
func (s *ConsultationService) Create(ctx context.Context, input ports.CreateConsultationInput) (*domain.Consultation, error) {
	if input.Name == "" || input.Email == "" || input.Phone == "" || input.Project == "" || input.Message == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.ValidProjectType(input.Project) {
		return nil, domain.ErrInvalidProjectType
	}

	now := time.Now().UTC()
	consultation, err := s.repo.Create(ctx, &domain.Consultation{
		FullName:       s.sanitizer.Sanitize(input.Name),
		Email:          input.Email,
		Phone:          input.Phone,
		ProjectType:    input.Project,
		ProjectDetails: s.sanitizer.Sanitize(input.Message),
		Status:         domain.ConsultationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("consultation_id", consultation.ID).Str("project_type", consultation.ProjectType).Msg("consultation submitted")
	return consultation, nil
}

func (s *ConsultationService) Get(ctx context.Context, id string) (*domain.Consultation, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all leads, newest first.
func (s *ConsultationService) List(ctx context.Context) ([]*domain.Consultation, error) {
	return s.repo.List(ctx)
}

// Update applies the admin-editable fields; empty fields are left unchanged.
func (s *ConsultationService) Update(ctx context.Context, input ports.UpdateConsultationInput) (*domain.Consultation, error) {
	consultation, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Status != "" {
		status := domain.ConsultationStatus(input.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidConsultationStatus
		}
		consultation.Status = status
	}
	if input.ConsultationDate != nil {
		consultation.ConsultationDate = input.ConsultationDate
	}
	if input.Notes != "" {
		consultation.Notes = s.sanitizer.Sanitize(input.Notes)
	}
	consultation.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, consultation); err != nil {
		return nil, fmt.Errorf("update consultation: %w", err)
	}
	return consultation, nil
}

func (s *ConsultationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
