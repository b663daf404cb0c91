package mongostore

import (
	"fmt"

	"github.com/MrEthical07/goJobs/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

func insertedID(res *mongo.InsertOneResult, current primitive.ObjectID) primitive.ObjectID {
	if res == nil {
		return current
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid
	}
	return current
}
