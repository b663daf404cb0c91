package mongostore

import (
	"context"

	"github.com/MrEthical07/goJobs/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplicationStore reads and writes the applications collection.
type ApplicationStore struct {
	coll *mongo.Collection
}

// Create inserts a. A second application to the same job reports models.ErrDuplicate.
func (s *ApplicationStore) Create(ctx context.Context, a *models.Application) error {
	res, err := s.coll.InsertOne(ctx, a)
	if err != nil {
		return mapWriteError(err)
	}
	a.ID = insertedID(res, a.ID)
	return nil
}

// ListByJob returns the applications for a job, newest first.
func (s *ApplicationStore) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	oid, err := models.ParseID(jobID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"jobId": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	apps := []models.Application{}
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
