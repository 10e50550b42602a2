package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

const galleryCollection = "project_images"

type GalleryRepository struct {
	coll *mongo.Collection
}

func NewGalleryRepository(db *mongo.Database) *GalleryRepository {
	return &GalleryRepository{coll: db.Collection(galleryCollection)}
}

type mongoProjectImage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Service     string             `bson:"service"`
	SubService  string             `bson:"sub_service"`
	ImageURL    string             `bson:"image_url"`
	ObjectKey   string             `bson:"object_key"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (m *mongoProjectImage) toDomain() *domain.ProjectImage {
	return &domain.ProjectImage{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		Service:     m.Service,
		SubService:  m.SubService,
		ImageURL:    m.ImageURL,
		ObjectKey:   m.ObjectKey,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (r *GalleryRepository) Create(ctx context.Context, img *domain.ProjectImage) (*domain.ProjectImage, error) {
	doc := mongoProjectImage{
		Title:       img.Title,
		Description: img.Description,
		Service:     img.Service,
		SubService:  img.SubService,
		ImageURL:    img.ImageURL,
		ObjectKey:   img.ObjectKey,
		CreatedAt:   img.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert project image: %w", err)
	}

	created := *img
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *GalleryRepository) FindByID(ctx context.Context, id string) (*domain.ProjectImage, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	var doc mongoProjectImage
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("find project image: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByService returns the images of one service category, newest first.
func (r *GalleryRepository) ListByService(ctx context.Context, service string) ([]*domain.ProjectImage, error) {
	cur, err := r.coll.Find(ctx, bson.M{"service": service},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list project images: %w", err)
	}
	defer cur.Close(ctx)

	var images []*domain.ProjectImage
	for cur.Next(ctx) {
		var doc mongoProjectImage
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode project image: %w", err)
		}
		images = append(images, doc.toDomain())
	}
	return images, cur.Err()
}

func (r *GalleryRepository) UpdateMeta(ctx context.Context, img *domain.ProjectImage) error {
	oid, err := primitive.ObjectIDFromHex(img.ID)
	if err != nil {
		return domain.ErrImageNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       img.Title,
		"description": img.Description,
		"service":     img.Service,
		"sub_service": img.SubService,
	}})
	if err != nil {
		return fmt.Errorf("update project image: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrImageNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project image: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}
