package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortKey is one (field, direction) pair, applied in order.
type SortKey struct {
	Field string
	Desc  bool
}

// Query is a composed, not yet executed read.
type Query struct {
	Filter     bson.M
	SortKeys   []SortKey
	Projection bson.D
	Skip       int64
	Limit      int64
	SearchTerm string
}

// Result is what a handler consumes before executing the query.
type Result struct {
	Query Query
	Page  int
	Limit int
}

// Sort renders SortKeys as an ordered bson document (1 ascending, -1 descending).
func (q Query) Sort() bson.D {
	d := make(bson.D, 0, len(q.SortKeys))
	for _, k := range q.SortKeys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: k.Field, Value: dir})
	}
	return d
}

// FindOptions carries sort, projection and the pagination window to the driver.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSort(q.Sort()).
		SetSkip(q.Skip).
		SetLimit(q.Limit)
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// Pages returns how many pages of limit items cover total.
func Pages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
