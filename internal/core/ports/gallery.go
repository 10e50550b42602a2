package ports

import (
	"context"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// GalleryRepository defines persistence for project image metadata.
type GalleryRepository interface {
	Create(ctx context.Context, img *domain.ProjectImage) (*domain.ProjectImage, error)
	FindByID(ctx context.Context, id string) (*domain.ProjectImage, error)
	ListByService(ctx context.Context, service string) ([]*domain.ProjectImage, error)
	UpdateMeta(ctx context.Context, img *domain.ProjectImage) error
	Delete(ctx context.Context, id string) error
}

// UploadImageInput carries a gallery upload: metadata plus the image bytes.
type UploadImageInput struct {
	Title       string
	Description string
	Service     string
	SubService  string
	Filename    string
	ContentType string
	Data        []byte
}

// UpdateImageInput carries a metadata-only update.
type UpdateImageInput struct {
	ID          string
	Title       string
	Description string
	Service     string
	SubService  string
}

// GalleryService covers the project-image gallery.
type GalleryService interface {
	Upload(ctx context.Context, input UploadImageInput) (*domain.ProjectImage, error)
	ListByService(ctx context.Context, service string) ([]*domain.ProjectImage, error)
	Update(ctx context.Context, input UpdateImageInput) (*domain.ProjectImage, error)
	Delete(ctx context.Context, id string) error
}
