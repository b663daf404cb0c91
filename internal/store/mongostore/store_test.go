package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/MrEthical07/goJobs/internal/models"
	"github.com/MrEthical07/goJobs/query"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestJobSchemaKinds(t *testing.T) {
	schema := JobSchema()
	cases := map[string]query.FieldKind{
		"salary":     query.KindNumber,
		"experience": query.KindNumber,
		"isActive":   query.KindBool,
		"deadline":   query.KindDate,
	}
	for field, want := range cases {
		if schema[field] != want {
			t.Fatalf("%s: expected kind %v, got %v", field, want, schema[field])
		}
	}
	if _, ok := schema["title"]; ok {
		t.Fatal("title should stay a string field")
	}
}

func TestMapWriteError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	if err := mapWriteError(dup); !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	other := errors.New("boom")
	if err := mapWriteError(other); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
}

func TestInsertedID(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := insertedID(&mongo.InsertOneResult{InsertedID: oid}, primitive.NilObjectID); got != oid {
		t.Fatalf("expected inserted id, got %v", got)
	}
	if got := insertedID(nil, oid); got != oid {
		t.Fatalf("expected current id, got %v", got)
	}
}

// newIntegrationStore connects to MONGO_TEST_URI and drops the test database afterwards.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dbName := "gojobs_test_" + primitive.NewObjectID().Hex()
	s, err := Connect(ctx, uri, dbName, logrus.New())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestIntegrationUsers(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	u := &models.User{Name: "Ann", Email: " Ann@Example.com ", PasswordHash: "h", Role: "jobseeker", CreatedAt: time.Now().UTC()}
	if err := s.Users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("expected generated id")
	}

	dup := &models.User{Email: "ann@example.com"}
	if err := s.Users.Create(ctx, dup); !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.Users.FindByEmail(ctx, "ANN@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("find by email: %v %v", got, err)
	}

	if err := s.Users.MarkEmailVerified(ctx, u.ID.Hex()); err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	got, _ = s.Users.FindByID(ctx, u.ID.Hex())
	if !got.EmailVerified {
		t.Fatal("expected verified user")
	}

	if _, err := s.Users.FindByID(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegrationJobSearch(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		title  string
		skills []string
	}{
		{"Go Developer", []string{"go"}},
		{"C++ Engineer", []string{"cpp"}},
		{"Go SRE", []string{"go", "k8s"}},
	}
	for i, sj := range seed {
		j := &models.Job{
			Title:     sj.title,
			Location:  "remote",
			Salary:    float64(1000 * (i + 1)),
			IsActive:  true,
			Skills:    sj.skills,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Jobs.Create(ctx, j); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}

	cfg := query.DefaultConfig()
	cfg.Schema = JobSchema()
	res := query.Build(cfg, query.Params{"q": "go", "salary[gte]": "2000", "fields": "title,salary"})

	docs, err := s.Jobs.Find(ctx, res.Query)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(docs) != 1 || docs[0]["title"] != "Go SRE" {
		t.Fatalf("unexpected docs %v", docs)
	}
	if _, ok := docs[0]["location"]; ok {
		t.Fatal("projection should have excluded location")
	}

	n, err := s.Jobs.Count(ctx, res.Query.Filter)
	if err != nil || n != 1 {
		t.Fatalf("count: %d %v", n, err)
	}

	res = query.Build(cfg, query.Params{"q": "c++"})
	docs, _ = s.Jobs.Find(ctx, res.Query)
	if len(docs) != 1 || docs[0]["title"] != "C++ Engineer" {
		t.Fatalf("regex metacharacters should match literally, got %v", docs)
	}
}

func TestIntegrationApplications(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	jobID := primitive.NewObjectID()
	applicant := primitive.NewObjectID()
	a := &models.Application{JobID: jobID, ApplicantID: applicant, Status: models.StatusApplied, CreatedAt: time.Now().UTC()}
	if err := s.Applications.Create(ctx, a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	again := &models.Application{JobID: jobID, ApplicantID: applicant}
	if err := s.Applications.Create(ctx, again); !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	apps, err := s.Applications.ListByJob(ctx, jobID.Hex())
	if err != nil || len(apps) != 1 {
		t.Fatalf("list: %v %v", apps, err)
	}
}
