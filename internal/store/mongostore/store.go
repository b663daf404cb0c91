// Package mongostore persists users, jobs and applications in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection        = "users"
	JobsCollection         = "jobs"
	ApplicationsCollection = "applications"
)

// ErrUnavailable wraps connection and ping failures.
var ErrUnavailable = errors.New("mongo unavailable")

// Store bundles the collection stores over one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users        *UserStore
	Jobs         *JobStore
	Applications *ApplicationStore
}

// Connect dials uri, pings the server and ensures indexes on dbName.
func Connect(ctx context.Context, uri, dbName string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := New(client.Database(dbName))
	s.client = client
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithFields(logrus.Fields{"component": "mongostore", "db": dbName}).Info("connected to MongoDB")
	return s, nil
}

// New wraps an existing database handle. Indexes are not touched.
func New(db *mongo.Database) *Store {
	return &Store{
		db:           db,
		Users:        &UserStore{coll: db.Collection(UsersCollection)},
		Jobs:         &JobStore{coll: db.Collection(JobsCollection)},
		Applications: &ApplicationStore{coll: db.Collection(ApplicationsCollection)},
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		JobsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "employerId", Value: 1}}},
		},
		ApplicationsCollection: {
			{Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "applicantId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: create indexes on %s: %v", ErrUnavailable, name, err)
		}
	}
	return nil
}

// Ping checks the server connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close disconnects a client opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
