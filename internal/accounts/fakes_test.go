package accounts

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/mailer"
	"github.com/MrEthical07/goJobs/internal/models"
	"github.com/MrEthical07/goJobs/password"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id string) error {
	return m.update(id, func(u *models.User) { u.EmailVerified = true })
}

func (m *memUsers) update(id string, fn func(*models.User)) error {
	oid, err := models.ParseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[oid]
	if !ok {
		return models.ErrNotFound
	}
	fn(&u)
	m.byID[oid] = u
	return nil
}

type fixture struct {
	svc    *Service
	users  *memUsers
	mail   *mailer.Recorder
	tokens *goJobs.TokenManager
	now    *time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cfg := goJobs.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Audit.Enabled = false
	tm, err := goJobs.New().WithConfig(cfg).WithClock(clock).Build()
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	t.Cleanup(tm.Close)

	hasher, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	f := &fixture{users: newMemUsers(), mail: &mailer.Recorder{}, tokens: tm, now: &now}
	opts = append([]Option{WithClock(clock), WithMetrics(tm.Metrics()), WithBaseURL("https://jobs.example")}, opts...)
	f.svc = NewService(f.users, tm, hasher, f.mail, opts...)
	return f
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	tok := u.Query().Get("token")
	if strings.TrimSpace(tok) == "" {
		t.Fatalf("link %q carries no token", link)
	}
	return tok
}
