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
	"github.com/righthome/cosmos-api/internal/core/ports"
)

const consultationCollection = "consultations"

type ConsultationRepository struct {
	coll *mongo.Collection
}

func NewConsultationRepository(db *mongo.Database) *ConsultationRepository {
	return &ConsultationRepository{coll: db.Collection(consultationCollection)}
}

type mongoConsultation struct {
	ID               primitive.ObjectID        `bson:"_id,omitempty"`
	FullName         string                    `bson:"full_name"`
	Email            string                    `bson:"email"`
	Phone            string                    `bson:"phone"`
	ProjectType      string                    `bson:"project_type"`
	ProjectDetails   string                    `bson:"project_details"`
	Status           domain.ConsultationStatus `bson:"status"`
	ConsultationDate *time.Time                `bson:"consultation_date,omitempty"`
	Notes            string                    `bson:"notes"`
	CreatedAt        time.Time                 `bson:"created_at"`
	UpdatedAt        time.Time                 `bson:"updated_at"`
}

func (m *mongoConsultation) toDomain() *domain.Consultation {
	c := &domain.Consultation{
		ID:             m.ID.Hex(),
		FullName:       m.FullName,
		Email:          m.Email,
		Phone:          m.Phone,
		ProjectType:    m.ProjectType,
		ProjectDetails: m.ProjectDetails,
		Status:         m.Status,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.ConsultationDate != nil {
		d := m.ConsultationDate.UTC()
		c.ConsultationDate = &d
	}
	return c
}

func (r *ConsultationRepository) Create(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error) {
	doc := mongoConsultation{
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		ProjectType:    c.ProjectType,
		ProjectDetails: c.ProjectDetails,
		Status:         c.Status,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert consultation: %w", err)
	}

	created := *c
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ConsultationRepository) FindByID(ctx context.Context, id string) (*domain.Consultation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrConsultationNotFound
	}

	var doc mongoConsultation
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConsultationNotFound
		}
		return nil, fmt.Errorf("find consultation: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns all consultations, newest first.
func (r *ConsultationRepository) List(ctx context.Context) ([]*domain.Consultation, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	defer cur.Close(ctx)

	var consultations []*domain.Consultation
	for cur.Next(ctx) {
		var doc mongoConsultation
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode consultation: %w", err)
		}
		consultations = append(consultations, doc.toDomain())
	}
	return consultations, cur.Err()
}

func (r *ConsultationRepository) Update(ctx context.Context, c *domain.Consultation) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return domain.ErrConsultationNotFound
	}

	set := bson.M{
		"status":     c.Status,
		"notes":      c.Notes,
		"updated_at": c.UpdatedAt,
	}
	if c.ConsultationDate != nil {
		set["consultation_date"] = c.ConsultationDate
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update consultation: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConsultationNotFound
	}
	return nil
}

func (r *ConsultationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrConsultationNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrConsultationNotFound
	}
	return nil
}

func (r *ConsultationRepository) CountAll(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *ConsultationRepository) CountByStatus(ctx context.Context, status domain.ConsultationStatus) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"status": status})
}

func (r *ConsultationRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]ports.MonthCount, error) {
	return monthlyCounts(ctx, r.coll, since)
}
