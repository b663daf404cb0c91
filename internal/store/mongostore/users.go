package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goJobs/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore reads and writes the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// Create inserts u and sets its ID. A taken email reports models.ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		return mapWriteError(err)
	}
	u.ID = insertedID(res, u.ID)
	return nil
}

// FindByEmail looks a user up by normalized email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByID looks a user up by hex id.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// UpdatePassword replaces the stored hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.set(ctx, id, bson.M{"passwordHash": hash})
}

// MarkEmailVerified flags the account's email as confirmed.
func (s *UserStore) MarkEmailVerified(ctx context.Context, id string) error {
	return s.set(ctx, id, bson.M{"emailVerified": true})
}

func (s *UserStore) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := models.ParseID(id)
	if err != nil {
		return err
	}
	fields["updatedAt"] = time.Now().UTC()

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
