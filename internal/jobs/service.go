// Package jobs serves job search, posting and applications.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/models"
	"github.com/MrEthical07/goJobs/query"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// JobStore executes built queries against the jobs collection.
type JobStore interface {
	Find(ctx context.Context, q query.Query) ([]bson.M, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
}

// ApplicationStore persists applications. Create reports models.ErrDuplicate
// for a second application to the same job.
type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	ListByJob(ctx context.Context, jobID string) ([]models.Application, error)
}

// Actor is the authenticated caller, taken from verified access-token claims.
type Actor struct {
	ID   string
	Role string
}

// Page is one page of search results.
type Page struct {
	Items []bson.M `json:"items"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Pages int      `json:"pages"`
}

// JobInput is the posting payload.
type JobInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	JobType     string     `json:"jobType"`
	Skills      []string   `json:"skills"`
	Salary      float64    `json:"salary"`
	Experience  int        `json:"experience"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ApplicationInput is the apply payload.
type ApplicationInput struct {
	CoverLetter string `json:"coverLetter"`
	ResumeURL   string `json:"resumeUrl"`
}

// Service implements the jobs use cases.
type Service struct {
	jobs    JobStore
	apps    ApplicationStore
	query   query.Config
	metrics *goJobs.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *goJobs.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the jobs service. cfg controls how search parameters are
// turned into queries.
func NewService(jobs JobStore, apps ApplicationStore, cfg query.Config, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		jobs:  jobs,
		apps:  apps,
		query: cfg,
		log:   discard,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "jobs")
	return s
}

// Search builds a query from raw parameters, runs it and counts the matches.
// Bad parameters never fail the request; they are dropped and logged at debug.
func (s *Service) Search(ctx context.Context, params query.Params) (*Page, error) {
	b := query.NewBuilder(s.query).
		Filter(params).
		Search(params).
		Sort(params).
		LimitFields(params).
		Paginate(params)
	res := b.Build()

	s.metrics.Inc(goJobs.MetricQueryBuilt)
	if issues := b.Issues(); len(issues) > 0 {
		s.metrics.Add(goJobs.MetricQueryParamDropped, uint64(len(issues)))
		entry := s.log.WithField("request_id", goJobs.RequestIDFromContext(ctx))
		for _, issue := range issues {
			entry.WithError(issue).Debug("search parameter ignored")
		}
	}

	items, err := s.jobs.Find(ctx, res.Query)
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}
	total, err := s.jobs.Count(ctx, res.Query.Filter)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if items == nil {
		items = []bson.M{}
	}

	return &Page{
		Items: items,
		Total: total,
		Page:  res.Page,
		Limit: res.Limit,
		Pages: query.Pages(total, res.Limit),
	}, nil
}

// Create posts a job owned by the employer.
func (s *Service) Create(ctx context.Context, actor Actor, in JobInput) (*models.Job, error) {
	if goJobs.NormalizeRole(actor.Role) != goJobs.RoleEmployer {
		return nil, ErrForbidden
	}
	employerID, err := models.ParseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}
	if err := validateJob(&in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if in.Deadline != nil && !in.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalidJob)
	}

	j := &models.Job{
		Title:       in.Title,
		Description: in.Description,
		Company:     in.Company,
		Location:    in.Location,
		JobType:     in.JobType,
		Skills:      in.Skills,
		Salary:      in.Salary,
		Experience:  in.Experience,
		IsActive:    true,
		EmployerID:  employerID,
		Deadline:    in.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.log.WithFields(logrus.Fields{"job_id": j.ID.Hex(), "subject": actor.ID}).Info("job posted")
	return j, nil
}

// Get loads one job.
func (s *Service) Get(ctx context.Context, id string) (*models.Job, error) {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// Apply records a jobseeker's application. Each applicant may apply once per job.
func (s *Service) Apply(ctx context.Context, jobID string, actor Actor, in ApplicationInput) (*models.Application, error) {
	if goJobs.NormalizeRole(actor.Role) != goJobs.RoleJobseeker {
		return nil, ErrForbidden
	}
	applicantID, err := models.ParseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}

	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !j.IsActive || (j.Deadline != nil && !j.Deadline.After(now)) {
		return nil, ErrJobClosed
	}

	a := &models.Application{
		JobID:       j.ID,
		ApplicantID: applicantID,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		ResumeURL:   strings.TrimSpace(in.ResumeURL),
		Status:      models.StatusApplied,
		CreatedAt:   now,
	}
	if err := s.apps.Create(ctx, a); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return a, nil
}

// ListApplications returns a job's applications to the employer who posted it.
func (s *Service) ListApplications(ctx context.Context, jobID string, actor Actor) ([]models.Application, error) {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.EmployerID.Hex() != actor.ID {
		return nil, ErrForbidden
	}

	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func validateJob(in *JobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.JobType = strings.TrimSpace(in.JobType)

	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidJob)
	case in.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidJob)
	case in.Company == "":
		return fmt.Errorf("%w: company is required", ErrInvalidJob)
	case in.Salary < 0:
		return fmt.Errorf("%w: salary must not be negative", ErrInvalidJob)
	case in.Experience < 0:
		return fmt.Errorf("%w: experience must not be negative", ErrInvalidJob)
	}

	skills := make([]string, 0, len(in.Skills))
	seen := make(map[string]struct{}, len(in.Skills))
	for _, skill := range in.Skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}
	in.Skills = skills
	return nil
}
