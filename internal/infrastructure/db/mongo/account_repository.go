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

const accountCollection = "users"

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	Phone              string             `bson:"phone"`
	Address            string             `bson:"address"`
	Role               string             `bson:"role"`
	IsVerified         bool               `bson:"is_verified"`
	VerificationToken  string             `bson:"verification_token,omitempty"`
	PendingEmail       string             `bson:"pending_email,omitempty"`
	EmailChangeToken   string             `bson:"email_change_token,omitempty"`
	EmailChangeExpires *time.Time         `bson:"email_change_expires,omitempty"`
	ResetToken         string             `bson:"reset_token,omitempty"`
	ResetTokenExpires  *time.Time         `bson:"reset_token_expires,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (m *mongoAccount) toDomain() *domain.Account {
	a := &domain.Account{
		ID:                m.ID.Hex(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Phone:             m.Phone,
		Address:           m.Address,
		Role:              m.Role,
		IsVerified:        m.IsVerified,
		VerificationToken: m.VerificationToken,
		PendingEmail:      m.PendingEmail,
		EmailChangeToken:  m.EmailChangeToken,
		ResetToken:        m.ResetToken,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
	if m.EmailChangeExpires != nil {
		a.EmailChangeExpires = m.EmailChangeExpires.UTC()
	}
	if m.ResetTokenExpires != nil {
		a.ResetTokenExpires = m.ResetTokenExpires.UTC()
	}
	return a
}

// EnsureIndexes creates the unique email index that backs the
// store-level uniqueness invariant.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		Name:              account.Name,
		Email:             account.Email,
		PasswordHash:      account.PasswordHash,
		Phone:             account.Phone,
		Address:           account.Address,
		Role:              account.Role,
		IsVerified:        account.IsVerified,
		VerificationToken: account.VerificationToken,
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         account.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByVerification(ctx context.Context, email, token string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email, "verification_token": token})
}

func (r *AccountRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"reset_token":         token,
		"reset_token_expires": bson.M{"$gt": now},
	})
}

func (r *AccountRepository) FindByPendingEmail(ctx context.Context, email, token string, now time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"pending_email":        email,
		"email_change_token":   token,
		"email_change_expires": bson.M{"$gt": now},
	})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*domain.Account
	for cur.Next(ctx) {
		var doc mongoAccount
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, doc.toDomain())
	}
	return accounts, cur.Err()
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verification_token": ""},
	})
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id, name, phone, address string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if phone != "" {
		set["phone"] = phone
	}
	if address != "" {
		set["address"] = address
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
	})
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"reset_token":         token,
			"reset_token_expires": expires,
			"updated_at":          time.Now().UTC(),
		},
	})
}

// ResetPassword stores the new hash and clears both reset fields in a single
// document write.
func (r *AccountRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
	})
}

func (r *AccountRepository) SetPendingEmail(ctx context.Context, id, email, token string, expires time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"pending_email":        email,
			"email_change_token":   token,
			"email_change_expires": expires,
			"updated_at":           time.Now().UTC(),
		},
	})
}

// CommitEmailChange promotes pending_email to email and clears the three
// pending fields in one pipeline update, so the change is atomic at the
// document level. The unique email index still guards against a conflicting
// registration that slipped in since the change was requested.
func (r *AccountRepository) CommitEmailChange(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"email": "$pending_email", "updated_at": "$$NOW"}}},
		{{Key: "$unset", Value: bson.A{"pending_email", "email_change_token", "email_change_expires"}}},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "pending_email": bson.M{"$exists": true}}, pipeline)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("commit email change: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetRole(ctx context.Context, id, role string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
}

// SetRoleGuarded demotes an admin inside a transaction so the admin-count
// check and the role write cannot interleave with a concurrent demote/delete
// of the other remaining admin.
func (r *AccountRepository) SetRoleGuarded(ctx context.Context, id, role string) error {
	return r.withAdminGuard(ctx, id, func(sc mongo.SessionContext, oid primitive.ObjectID) error {
		_, err := r.coll.UpdateOne(sc, bson.M{"_id": oid}, bson.M{
			"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
		})
		return err
	})
}

// DeleteGuarded deletes an account inside a transaction with the same
// last-admin guard.
func (r *AccountRepository) DeleteGuarded(ctx context.Context, id string) error {
	return r.withAdminGuard(ctx, id, func(sc mongo.SessionContext, oid primitive.ObjectID) error {
		_, err := r.coll.DeleteOne(sc, bson.M{"_id": oid})
		return err
	})
}

// withAdminGuard runs mutate in a transaction, first verifying that the
// target is not the sole admin. Requires the deployment to support
// transactions (replica set or mongos).
func (r *AccountRepository) withAdminGuard(ctx context.Context, id string, mutate func(mongo.SessionContext, primitive.ObjectID) error) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc mongoAccount
		if err := r.coll.FindOne(sc, bson.M{"_id": oid}).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, err
		}

		if doc.Role == domain.RoleAdmin {
			n, err := r.coll.CountDocuments(sc, bson.M{"role": domain.RoleAdmin})
			if err != nil {
				return nil, err
			}
			if n <= 1 {
				return nil, domain.ErrLastAdmin
			}
		}

		return nil, mutate(sc, oid)
	})
	return err
}

func (r *AccountRepository) CountAll(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *AccountRepository) CountAdmins(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"role": domain.RoleAdmin})
}

// MonthlyCounts groups registrations by calendar month since the given time.
func (r *AccountRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]ports.MonthCount, error) {
	return monthlyCounts(ctx, r.coll, since)
}

func (r *AccountRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
