// Package models holds the persisted job-board documents and the storage
// errors every store implementation reports.
package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches, including for malformed ids.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate document")
)

// User is an account document. The token subject is ID.Hex().
type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	PasswordHash  string             `json:"-" bson:"passwordHash"`
	Role          string             `json:"role" bson:"role"`
	EmailVerified bool               `json:"emailVerified" bson:"emailVerified"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Job is a job posting document.
type Job struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Company     string             `json:"company" bson:"company"`
	Location    string             `json:"location" bson:"location"`
	JobType     string             `json:"jobType" bson:"jobType"`
	Skills      []string           `json:"skills" bson:"skills"`
	Salary      float64            `json:"salary" bson:"salary"`
	Experience  int                `json:"experience" bson:"experience"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	EmployerID  primitive.ObjectID `json:"employerId" bson:"employerId"`
	Deadline    *time.Time         `json:"deadline,omitempty" bson:"deadline,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ApplicationStatus values.
const (
	StatusApplied     = "applied"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
)

// Application links a jobseeker to a job. (JobID, ApplicantID) is unique.
type Application struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JobID       primitive.ObjectID `json:"jobId" bson:"jobId"`
	ApplicantID primitive.ObjectID `json:"applicantId" bson:"applicantId"`
	CoverLetter string             `json:"coverLetter,omitempty" bson:"coverLetter,omitempty"`
	ResumeURL   string             `json:"resumeUrl,omitempty" bson:"resumeUrl,omitempty"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// ParseID converts a hex id. Malformed ids report ErrNotFound.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}
