// Command server wires the peer-review service: stores, services, handlers,
// and the HTTP lifecycle. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"talenthunt/internal/audit"
	authservice "talenthunt/internal/auth/service"
	sessionstore "talenthunt/internal/auth/store/session"
	httpapi "talenthunt/internal/http"
	identityhandler "talenthunt/internal/identity/handler"
	identitymetrics "talenthunt/internal/identity/metrics"
	identityservice "talenthunt/internal/identity/service"
	userstore "talenthunt/internal/identity/store/user"
	jwttoken "talenthunt/internal/jwt_token"
	"talenthunt/internal/media"
	"talenthunt/internal/notification"
	"talenthunt/internal/platform/config"
	"talenthunt/internal/platform/httpserver"
	"talenthunt/internal/platform/logger"
	platformmetrics "talenthunt/internal/platform/metrics"
	"talenthunt/internal/platform/postgres"
	platformredis "talenthunt/internal/platform/redis"
	profilehandler "talenthunt/internal/profile/handler"
	profilemetrics "talenthunt/internal/profile/metrics"
	profileservice "talenthunt/internal/profile/service"
	profilestore "talenthunt/internal/profile/store/profile"
	registrationhandler "talenthunt/internal/registration/handler"
	registrationmetrics "talenthunt/internal/registration/metrics"
	registrationservice "talenthunt/internal/registration/service"
	pendingstore "talenthunt/internal/registration/store/pending"
	reviewhandler "talenthunt/internal/review/handler"
	reviewmetrics "talenthunt/internal/review/metrics"
	reviewservice "talenthunt/internal/review/service"
	reviewstore "talenthunt/internal/review/store/review"
)

const (
	jwtIssuer       = "talenthunt"
	jwtAudience     = "talenthunt-web"
	auditBufferSize = 1024
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing stores.
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient == nil {
		log.Error("redis is required for sessions and pending signups")
		os.Exit(1)
	}
	defer redisClient.Close()

	photos, err := media.NewFromConfig(cfg.Media)
	if err != nil {
		log.Error("media store init failed", "error", err)
		os.Exit(1)
	}

	// Audit pipeline. No brokers configured means events are dropped.
	var (
		recorder audit.Recorder = audit.Nop{}
		worker   *audit.Worker
		sink     *audit.KafkaSink
	)
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err = audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisher := audit.NewPublisher(auditBufferSize, log)
		worker = audit.NewWorker(sink, publisher.Inbox(), log)
		recorder = publisher
	}

	var sender notification.Sender = notification.NewLogSender(log)
	if cfg.NotificationSender == "smtp" {
		sender = notification.NewSMTPSender(cfg.SMTP)
	}

	// Stores and services.
	users := userstore.NewPostgres(db)
	profiles := profilestore.NewPostgres(db)
	reviews := reviewstore.NewPostgres(db)
	sessions := sessionstore.NewRedis(redisClient.Client)
	pending := pendingstore.NewRedis(redisClient.Client)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	authSvc := authservice.New(sessions, tokens, cfg.SessionTTL, log)

	identityMet := identitymetrics.New()
	identitySvc := identityservice.New(users, log, identityMet)
	profileSvc := profileservice.New(profiles, users, photos, recorder, log, profilemetrics.New())
	reviewSvc := reviewservice.New(reviews, users, recorder, cfg.AnonymousSentinel, log, reviewmetrics.New())
	registrationSvc := registrationservice.New(pending, users, profiles, sender, recorder,
		cfg.PendingSignupTTL, log, registrationmetrics.New(), identityMet)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Metrics:      platformmetrics.New(),
		Validator:    authSvc,
		Registration: registrationhandler.New(registrationSvc, authSvc, log),
		Identity:     identityhandler.New(identitySvc, authSvc, recorder, log),
		Profile:      profilehandler.New(profileSvc, identitySvc, reviewSvc, log),
		Review:       reviewhandler.New(reviewSvc, identitySvc, log),
		Ready: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return redisClient.Health(ctx)
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		group.Go(func() error {
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
