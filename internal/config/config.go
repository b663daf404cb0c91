package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/rate"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration of the API server.
type Config struct {
	AppAddr         string
	GinMode         string
	PublicBaseURL   string
	ShutdownTimeout time.Duration

	JWTSecret     []byte
	JWTIssuer     string
	JWTAudience   string
	JWTKeyID      string
	JWTVerifyKeys map[string][]byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	ResetTTL    time.Duration
	VerifyTTL   time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RevocationDegrade bool

	MongoURI string
	MongoDB  string

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	QueryMaxLimit      int
	OTelMetrics        bool

	PasswordHasher string
	BcryptCost     int

	LoginMaxAttempts  int
	LoginWindow       time.Duration
	ForgotMaxAttempts int
	ForgotWindow      time.Duration
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env file")
	}
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config from getenv. Only JWT_SECRET is mandatory.
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := reader{getenv: getenv}

	cfg := &Config{
		AppAddr:         env.str("APP_ADDR", ":8080"),
		GinMode:         env.str("GIN_MODE", ""),
		PublicBaseURL:   strings.TrimRight(env.str("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),

		JWTIssuer:   env.str("JWT_ISSUER", "gojobs"),
		JWTAudience: env.str("JWT_AUDIENCE", ""),
		AccessTTL:   env.duration("ACCESS_TTL", time.Hour),
		RefreshTTL:  env.duration("REFRESH_TTL", 7*24*time.Hour),
		ResetTTL:    env.duration("RESET_TTL", time.Hour),
		VerifyTTL:   env.duration("VERIFY_TTL", 24*time.Hour),

		RedisAddr:         env.str("REDIS_ADDR", ""),
		RedisPassword:     env.str("REDIS_PASSWORD", ""),
		RedisDB:           env.integer("REDIS_DB", 0),
		RevocationDegrade: env.boolean("REVOCATION_DEGRADE", true),

		MongoURI: env.str("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  env.str("MONGO_DB", "gojobs"),

		CORSAllowedOrigins: env.list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		LogLevel:           strings.ToLower(env.str("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(env.str("LOG_FORMAT", "text")),
		QueryMaxLimit:      env.integer("QUERY_MAX_LIMIT", 100),
		OTelMetrics:        env.boolean("OTEL_METRICS", false),

		PasswordHasher: strings.ToLower(env.str("PASSWORD_HASHER", "bcrypt")),
		BcryptCost:     env.integer("BCRYPT_COST", 0),

		LoginMaxAttempts:  env.integer("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:       env.duration("LOGIN_WINDOW", 15*time.Minute),
		ForgotMaxAttempts: env.integer("FORGOT_MAX_ATTEMPTS", 3),
		ForgotWindow:      env.duration("FORGOT_WINDOW", time.Hour),
	}

	secret := env.str("JWT_SECRET", "")
	if secret == "" {
		env.fail(errors.New("JWT_SECRET environment variable not set"))
	}
	cfg.JWTSecret = []byte(secret)

	cfg.JWTKeyID = env.str("JWT_KEY_ID", "")
	cfg.JWTVerifyKeys = env.keySet("JWT_VERIFY_KEYS")
	if len(cfg.JWTVerifyKeys) > 0 && cfg.JWTKeyID == "" {
		env.fail(errors.New("JWT_VERIFY_KEYS requires JWT_KEY_ID"))
	}

	if cfg.QueryMaxLimit < 1 {
		env.fail(fmt.Errorf("QUERY_MAX_LIMIT must be >= 1, got %d", cfg.QueryMaxLimit))
	}
	switch cfg.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		env.fail(fmt.Errorf("PASSWORD_HASHER must be bcrypt or argon2id, got %q", cfg.PasswordHasher))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		env.fail(fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	if cfg.LoginMaxAttempts < 1 || cfg.ForgotMaxAttempts < 1 {
		env.fail(errors.New("LOGIN_MAX_ATTEMPTS and FORGOT_MAX_ATTEMPTS must be >= 1"))
	}

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	return cfg, nil
}

// TokenConfig maps the process settings onto the TokenManager configuration.
func (c *Config) TokenConfig() goJobs.Config {
	tc := goJobs.DefaultConfig()
	tc.JWT.PrivateKey = c.JWTSecret
	tc.JWT.Issuer = c.JWTIssuer
	tc.JWT.Audience = c.JWTAudience
	tc.JWT.KeyID = c.JWTKeyID
	tc.JWT.VerifyKeys = c.JWTVerifyKeys
	tc.Tokens.AccessTTL = c.AccessTTL
	tc.Tokens.RefreshTTL = c.RefreshTTL
	tc.Tokens.ResetTTL = c.ResetTTL
	tc.Tokens.VerificationTTL = c.VerifyTTL
	tc.Revocation.DegradeToMemory = c.RevocationDegrade
	return tc
}

// RateConfig maps the throttle settings onto the limiter configuration.
func (c *Config) RateConfig() rate.Config {
	rc := rate.DefaultConfig()
	rc.MaxLoginAttempts = c.LoginMaxAttempts
	rc.LoginWindow = c.LoginWindow
	rc.MaxForgotAttempts = c.ForgotMaxAttempts
	rc.ForgotWindow = c.ForgotWindow
	return rc
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) fail(err error) {
	r.errs = append(r.errs, err)
}

func (r *reader) str(key, def string) string {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	return v
}

func (r *reader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return def
	}
	if d <= 0 {
		r.fail(fmt.Errorf("%s must be positive", key))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// keySet parses "kid=secret,kid2=secret2". Retired signing secrets go here so tokens
// they issued keep verifying until they expire.
func (r *reader) keySet(key string) map[string][]byte {
	entries := r.list(key, nil)
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		kid, secret, ok := strings.Cut(entry, "=")
		kid = strings.TrimSpace(kid)
		if !ok || kid == "" || secret == "" {
			r.fail(fmt.Errorf("%s: entry %q must be kid=secret", key, kid))
			continue
		}
		out[kid] = []byte(secret)
	}
	return out
}
