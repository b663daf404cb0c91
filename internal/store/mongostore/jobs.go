package mongostore

import (
	"context"
	"errors"

	"github.com/MrEthical07/goJobs/internal/models"
	"github.com/MrEthical07/goJobs/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JobSchema tells the query builder how to cast filter values for the jobs collection.
func JobSchema() map[string]query.FieldKind {
	return map[string]query.FieldKind{
		"salary":     query.KindNumber,
		"experience": query.KindNumber,
		"isActive":   query.KindBool,
		"createdAt":  query.KindDate,
		"updatedAt":  query.KindDate,
		"deadline":   query.KindDate,
	}
}

// JobStore reads and writes the jobs collection.
type JobStore struct {
	coll *mongo.Collection
}

// Find executes a built query. Documents are returned as maps so that the
// requested projection shapes the response.
func (s *JobStore) Find(ctx context.Context, q query.Query) ([]bson.M, error) {
	cur, err := s.coll.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := make([]bson.M, 0, q.Limit)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the number of documents matching filter.
func (s *JobStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.coll.CountDocuments(ctx, filter)
}

// Create inserts j and sets its ID.
func (s *JobStore) Create(ctx context.Context, j *models.Job) error {
	res, err := s.coll.InsertOne(ctx, j)
	if err != nil {
		return mapWriteError(err)
	}
	j.ID = insertedID(res, j.ID)
	return nil
}

// Get loads one job by hex id.
func (s *JobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	var j models.Job
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}
