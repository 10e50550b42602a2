package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// GalleryService manages project images: metadata lives in the document
// store, the bytes in external object storage.
type GalleryService struct {
	repo  ports.GalleryRepository
	store ports.ObjectStore
	log   zerolog.Logger
}

func NewGalleryService(repo ports.GalleryRepository, store ports.ObjectStore, log zerolog.Logger) *GalleryService {
	return &GalleryService{repo: repo, store: store, log: log}
}

// Upload stores the image bytes under a fresh object key, then records the
// gallery entry. If the metadata write fails the object is removed again so
// storage does not accumulate orphans.
func (s *GalleryService) Upload(ctx context.Context, input ports.UploadImageInput) (*domain.ProjectImage, error) {
	if input.Title == "" || input.Description == "" || input.Service == "" || input.SubService == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.ValidService(input.Service) {
		return nil, domain.ErrInvalidService
	}
	if len(input.Data) == 0 {
		return nil, domain.ErrMissingFields
	}

	key := storageKey(input.Filename)
	url, err := s.store.Put(ctx, key, input.ContentType, input.Data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	img, err := s.repo.Create(ctx, &domain.ProjectImage{
		Title:       input.Title,
		Description: input.Description,
		Service:     input.Service,
		SubService:  input.SubService,
		ImageURL:    url,
		ObjectKey:   key,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", key).Msg("orphaned object cleanup failed")
		}
		return nil, err
	}

	s.log.Info().Str("image_id", img.ID).Str("service", img.Service).Msg("project image uploaded")
	return img, nil
}

// ListByService returns the gallery entries for one site section, newest first.
func (s *GalleryService) ListByService(ctx context.Context, service string) ([]*domain.ProjectImage, error) {
	if !domain.ValidService(service) {
		return nil, domain.ErrInvalidService
	}
	return s.repo.ListByService(ctx, service)
}

// Update changes metadata only; the stored object is untouched.
func (s *GalleryService) Update(ctx context.Context, input ports.UpdateImageInput) (*domain.ProjectImage, error) {
	img, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Service != "" && !domain.ValidService(input.Service) {
		return nil, domain.ErrInvalidService
	}
	if input.Title != "" {
		img.Title = input.Title
	}
	if input.Description != "" {
		img.Description = input.Description
	}
	if input.Service != "" {
		img.Service = input.Service
	}
	if input.SubService != "" {
		img.SubService = input.SubService
	}

	if err := s.repo.UpdateMeta(ctx, img); err != nil {
		return nil, fmt.Errorf("update image: %w", err)
	}
	return img, nil
}

// Delete removes the stored object first, then the metadata document.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	img, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, img.ObjectKey); err != nil {
		return fmt.Errorf("delete image object: %w", err)
	}
	if err := s.repo.Delete(ctx, img.ID); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	s.log.Info().Str("image_id", img.ID).Msg("project image deleted")
	return nil
}

// storageKey builds a date-partitioned object key, keeping the original file
// extension so content type sniffing on the CDN side keeps working.
func storageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	d := time.Now().UTC()
	return fmt.Sprintf("project-images/%d/%02d/%s%s", d.Year(), int(d.Month()), uuid.New(), ext)
}
