// Package accounts implements registration, login and the token-backed
// account flows: refresh rotation, logout, password reset and email
// verification.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/mailer"
	"github.com/MrEthical07/goJobs/internal/models"
	"github.com/MrEthical07/goJobs/internal/rate"
	"github.com/MrEthical07/goJobs/password"
	"github.com/sirupsen/logrus"
)

// ErrRateLimited is returned when a login or reset-mail budget is exhausted.
var ErrRateLimited = rate.ErrRateLimited

// UserStore persists accounts. Implementations report models.ErrNotFound and
// models.ErrDuplicate.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// Tokens is the part of *goJobs.TokenManager the service uses.
type Tokens interface {
	IssueAccessAndRefresh(ctx context.Context, subjectID, role string) (goJobs.TokenPair, error)
	IssuePasswordResetToken(ctx context.Context, subjectID string) (string, error)
	IssueEmailVerificationToken(ctx context.Context, subjectID string) (string, error)
	VerifyKind(ctx context.Context, token string, kind goJobs.TokenKind) (*goJobs.Claims, error)
	RevokeRemaining(ctx context.Context, token string) error
}

// Throttle limits failed logins and reset-mail requests. *rate.Limiter implements it.
type Throttle interface {
	CheckLogin(ctx context.Context, email, ip string) error
	IncrementLogin(ctx context.Context, email, ip string) error
	ResetLogin(ctx context.Context, email string) error
	AllowForgotPassword(ctx context.Context, email string) error
	LoginAttempts(ctx context.Context, email string) (int, error)
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResult is returned by Register, Login and Refresh.
type AuthResult struct {
	User   *models.User     `json:"user"`
	Tokens goJobs.TokenPair `json:"tokens"`
}

// Service implements the account flows.
type Service struct {
	users    UserStore
	tokens   Tokens
	hasher   password.Hasher
	mail     mailer.Mailer
	throttle Throttle
	metrics  *goJobs.Metrics
	log      logrus.FieldLogger
	baseURL  string
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithThrottle enables login and reset-mail throttling.
func WithThrottle(t Throttle) Option {
	return func(s *Service) { s.throttle = t }
}

// WithMetrics records account counters on m.
func WithMetrics(m *goJobs.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBaseURL sets the public URL used in mailed links.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the account flows.
func NewService(users UserStore, tokens Tokens, hasher password.Hasher, mail mailer.Mailer, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		mail:    mail,
		log:     discard,
		baseURL: "http://localhost:8080",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "accounts")
	return s
}

// Register creates a jobseeker or employer account, signs it in and mails a
// verification link.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidRegistration
	}

	role := goJobs.NormalizeRole(in.Role)
	if role == "" {
		role = goJobs.RoleJobseeker
	}
	if role != goJobs.RoleJobseeker && role != goJobs.RoleEmployer {
		return nil, goJobs.ErrAccountRoleInvalid
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			s.metrics.Inc(goJobs.MetricRegisterDuplicate)
			return nil, goJobs.ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.metrics.Inc(goJobs.MetricRegisterSuccess)

	pair, err := s.tokens.IssueAccessAndRefresh(ctx, u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, u); err != nil {
		s.log.WithError(err).WithField("subject", u.ID.Hex()).Warn("verification email not sent")
	}

	return &AuthResult{User: u, Tokens: pair}, nil
}

// Login checks credentials and issues a token pair. Unknown emails and wrong
// passwords both report goJobs.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	email = normalizeEmail(email)
	ip := goJobs.ClientIPFromContext(ctx)

	if s.throttle != nil {
		if err := s.throttle.CheckLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return nil, ErrRateLimited
			}
			s.log.WithError(err).Warn("login throttle unavailable")
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.loginFailed(ctx, email, ip)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(pass, u.PasswordHash)
	if err != nil {
		s.log.WithError(err).WithField("subject", u.ID.Hex()).Error("stored password hash unusable")
	}
	if !ok {
		return nil, s.loginFailed(ctx, email, ip)
	}

	s.maybeRehash(ctx, u, pass)

	if s.throttle != nil {
		if err := s.throttle.ResetLogin(ctx, email); err != nil {
			s.log.WithError(err).Warn("login throttle reset failed")
		}
	}

	pair, err := s.tokens.IssueAccessAndRefresh(ctx, u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}
	s.metrics.Inc(goJobs.MetricLoginSuccess)
	return &AuthResult{User: u, Tokens: pair}, nil
}

// Refresh rotates a refresh token: the presented token is revoked for its
// remaining lifetime and a new pair is issued with the account's current role.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyKind(ctx, refreshToken, goJobs.KindRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, goJobs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssueAccessAndRefresh(ctx, u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Tokens: pair}, nil
}

// Logout revokes the access token and, when given, the refresh token. The
// refresh token must belong to the same subject as the access token.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	access, err := s.tokens.VerifyKind(ctx, accessToken, goJobs.KindAccess)
	if err != nil {
		return err
	}

	if refreshToken != "" {
		refresh, err := s.tokens.VerifyKind(ctx, refreshToken, goJobs.KindRefresh)
		switch {
		case errors.Is(err, goJobs.ErrTokenExpired), errors.Is(err, goJobs.ErrTokenRevoked):
			refreshToken = ""
		case err != nil:
			return err
		case refresh.Subject != access.Subject:
			return fmt.Errorf("%w: refresh token subject mismatch", goJobs.ErrTokenMalformed)
		}
	}

	if err := s.revoke(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		return s.revoke(ctx, refreshToken)
	}
	return nil
}

// ForgotPassword mails a reset link. Unknown emails succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return goJobs.ErrAccountInvalid
	}

	if s.throttle != nil {
		if err := s.throttle.AllowForgotPassword(ctx, email); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return ErrRateLimited
			}
			s.log.WithError(err).Warn("reset throttle unavailable")
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := s.tokens.IssuePasswordResetToken(ctx, u.ID.Hex())
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.PasswordReset(s.baseURL, u.Email, token)); err != nil {
		s.log.WithError(err).WithField("subject", u.ID.Hex()).Error("reset email not sent")
	}
	return nil
}

// ResetPassword consumes a reset token and stores a new password hash.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyKind(ctx, resetToken, goJobs.KindReset)
	if err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	// Burn the token first so a store failure cannot leave it reusable.
	if err := s.revoke(ctx, resetToken); err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, claims.Subject, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return goJobs.ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.metrics.Inc(goJobs.MetricPasswordResetConfirm)
	s.log.WithField("subject", claims.Subject).Info("password reset")
	return nil
}

// RequestEmailVerification mails a fresh verification link. Already verified
// accounts are left alone.
func (s *Service) RequestEmailVerification(ctx context.Context, subjectID string) error {
	u, err := s.Me(ctx, subjectID)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return nil
	}
	return s.sendVerification(ctx, u)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyKind(ctx, token, goJobs.KindEmailVerification)
	if err != nil {
		return err
	}

	if err := s.users.MarkEmailVerified(ctx, claims.Subject); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return goJobs.ErrUserNotFound
		}
		return fmt.Errorf("mark verified: %w", err)
	}
	s.metrics.Inc(goJobs.MetricEmailVerified)

	return s.revoke(ctx, token)
}

// Me loads the account behind a token subject.
func (s *Service) Me(ctx context.Context, subjectID string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, goJobs.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Service) sendVerification(ctx context.Context, u *models.User) error {
	token, err := s.tokens.IssueEmailVerificationToken(ctx, u.ID.Hex())
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.EmailVerification(s.baseURL, u.Email, token))
}

func (s *Service) loginFailed(ctx context.Context, email, ip string) error {
	s.metrics.Inc(goJobs.MetricLoginFailure)
	if s.throttle != nil {
		if err := s.throttle.IncrementLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return ErrRateLimited
			}
			s.log.WithError(err).Warn("login throttle unavailable")
			return goJobs.ErrInvalidCredentials
		}
		if n, err := s.throttle.LoginAttempts(ctx, email); err == nil {
			s.log.WithFields(logrus.Fields{"failed_attempts": n, "ip": ip}).Info("login failed")
		}
	}
	return goJobs.ErrInvalidCredentials
}

func (s *Service) maybeRehash(ctx context.Context, u *models.User, pass string) {
	stale, err := s.hasher.NeedsRehash(u.PasswordHash)
	if err != nil || !stale {
		return
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return
	}
	if err := s.users.UpdatePassword(ctx, u.ID.Hex(), hash); err != nil {
		s.log.WithError(err).WithField("subject", u.ID.Hex()).Warn("password rehash not saved")
		return
	}
	u.PasswordHash = hash
}

func (s *Service) hashPassword(pass string) (string, error) {
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) || errors.Is(err, password.ErrTooLong) {
			return "", fmt.Errorf("%w: %v", goJobs.ErrPasswordPolicy, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// revoke treats a memory-only revocation as success.
func (s *Service) revoke(ctx context.Context, token string) error {
	err := s.tokens.RevokeRemaining(ctx, token)
	if err != nil && errors.Is(err, goJobs.ErrRevocationDegraded) {
		s.log.WithError(err).Warn("token revoked in process memory only")
		return nil
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
