package goJobs

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/MrEthical07/goJobs/jwt"
	"github.com/MrEthical07/goJobs/revocation"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Builder assembles a TokenManager. Configure it during startup, call Build once.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  revocation.Store

	logger    logrus.FieldLogger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis selects the external revocation store. Without it revocation lives in
// process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRevocationStore overrides store selection entirely.
func (b *Builder) WithRevocationStore(store revocation.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithLogger(logger logrus.FieldLogger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces time.Now for signing, verification and in-memory eviction.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and selects the revocation store once.
func (b *Builder) Build() (*TokenManager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	logger := b.logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	logger = logger.WithField("component", "tokens")

	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(strings.ToLower(cfg.JWT.SigningMethod)),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
		VerifyKeys:    verifyKeySet(cfg.JWT),
		RequireIAT:    true,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	tm := &TokenManager{
		config:  cfg,
		jwt:     jm,
		log:     logger,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		now:     now,
	}

	// -------- REVOCATION STORE --------
	switch {
	case b.store != nil:
		tm.revoked = b.store
	case b.redis != nil:
		tm.revoked = revocation.NewRedisStore(b.redis, cfg.Revocation.RedisPrefix, cfg.Revocation.OpTimeout)
		if cfg.Revocation.DegradeToMemory {
			tm.fallback = revocation.NewMemoryStore(revocation.WithClock(now))
		}
	default:
		mem := revocation.NewMemoryStore(revocation.WithClock(now))
		tm.revoked = mem
		tm.owned = mem
	}

	logger.WithField("store", storeName(tm.revoked)).Info("token manager ready")

	b.built = true
	return tm, nil
}

// verifyKeySet returns the kid key set with the active signing key included, or nil
// when no rotation set is configured.
func verifyKeySet(cfg JWTConfig) map[string][]byte {
	if len(cfg.VerifyKeys) == 0 {
		return nil
	}
	keys := make(map[string][]byte, len(cfg.VerifyKeys)+1)
	for kid, key := range cfg.VerifyKeys {
		keys[kid] = cloneBytes(key)
	}
	kid := strings.TrimSpace(cfg.KeyID)
	if _, ok := keys[kid]; !ok {
		active := cfg.PrivateKey
		if strings.EqualFold(cfg.SigningMethod, "ed25519") {
			active = cfg.PublicKey
		}
		keys[kid] = cloneBytes(active)
	}
	return keys
}

func storeName(s revocation.Store) string {
	switch s.(type) {
	case *revocation.RedisStore:
		return "redis"
	case *revocation.MemoryStore:
		return "memory"
	default:
		return "custom"
	}
}
