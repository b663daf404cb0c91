package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goJobs "github.com/MrEthical07/goJobs"
	"github.com/MrEthical07/goJobs/internal/accounts"
	"github.com/MrEthical07/goJobs/internal/config"
	"github.com/MrEthical07/goJobs/internal/httpapi"
	"github.com/MrEthical07/goJobs/internal/jobs"
	"github.com/MrEthical07/goJobs/internal/mailer"
	"github.com/MrEthical07/goJobs/internal/rate"
	"github.com/MrEthical07/goJobs/internal/store/mongostore"
	otelexport "github.com/MrEthical07/goJobs/metrics/export/otel"
	"github.com/MrEthical07/goJobs/metrics/export/prometheus"
	"github.com/MrEthical07/goJobs/password"
	"github.com/MrEthical07/goJobs/query"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	builder := goJobs.New().
		WithConfig(cfg.TokenConfig()).
		WithLogger(log).
		WithAuditSink(goJobs.NewLogrusAuditSink(log))

	var throttle accounts.Throttle
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis not reachable at startup")
		}
		builder = builder.WithRedis(rdb)
		throttle = rate.New(rdb, cfg.RateConfig())
		log.WithField("addr", cfg.RedisAddr).Info("using redis for revocation and throttling")
	} else {
		log.Warn("REDIS_ADDR not set: revocations are kept in process memory and login throttling is off")
	}

	tokens, err := builder.Build()
	if err != nil {
		return err
	}
	defer tokens.Close()

	if cfg.OTelMetrics {
		exp, err := otelexport.New(otel.Meter("github.com/MrEthical07/goJobs"), tokens)
		if err != nil {
			return err
		}
		defer exp.Close()
		log.Info("publishing metrics to the global OpenTelemetry meter provider")
	}

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	accountOpts := []accounts.Option{
		accounts.WithLogger(log),
		accounts.WithMetrics(tokens.Metrics()),
		accounts.WithBaseURL(cfg.PublicBaseURL),
	}
	if throttle != nil {
		accountOpts = append(accountOpts, accounts.WithThrottle(throttle))
	}
	accountSvc := accounts.NewService(store.Users, tokens, hasher, mailer.NewLogMailer(log), accountOpts...)

	queryCfg := query.DefaultConfig()
	queryCfg.MaxLimit = cfg.QueryMaxLimit
	queryCfg.Schema = mongostore.JobSchema()
	jobSvc := jobs.NewService(store.Jobs, store.Applications, queryCfg,
		jobs.WithLogger(log),
		jobs.WithMetrics(tokens.Metrics()),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Tokens:      tokens,
		Accounts:    accountSvc,
		Jobs:        jobSvc,
		Metrics:     prometheus.NewPrometheusExporter(tokens).Handler(),
		Ready:       store.Ping,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.AppAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHasher returns a chain whose primary algorithm is the configured one.
// Hashes from the other algorithm still verify and are upgraded on login.
func newHasher(cfg *config.Config) (password.Hasher, error) {
	bc, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	a2, err := password.NewArgon2(password.DefaultArgon2Config())
	if err != nil {
		return nil, err
	}
	if cfg.PasswordHasher == "argon2id" {
		return password.NewChain(a2, bc), nil
	}
	return password.NewChain(bc, a2), nil
}
