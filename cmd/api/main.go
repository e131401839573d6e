package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/application/analytics"
	"github.com/linkedcreds-api/internal/application/credential"
	"github.com/linkedcreds-api/internal/application/session"
	"github.com/linkedcreds-api/internal/application/verification"
	"github.com/linkedcreds-api/internal/config"
	"github.com/linkedcreds-api/internal/infrastructure/dynamo"
	"github.com/linkedcreds-api/internal/infrastructure/filestore"
	"github.com/linkedcreds-api/internal/infrastructure/google"
	jwtinfra "github.com/linkedcreds-api/internal/infrastructure/jwt"
	"github.com/linkedcreds-api/internal/infrastructure/linkedtrust"
	"github.com/linkedcreds-api/internal/infrastructure/memstore"
	"github.com/linkedcreds-api/internal/infrastructure/ratelimit"
	"github.com/linkedcreds-api/internal/infrastructure/resend"
	s3infra "github.com/linkedcreds-api/internal/infrastructure/s3"
	"github.com/linkedcreds-api/internal/infrastructure/smtp"
	"github.com/linkedcreds-api/internal/infrastructure/sns"
	transporthttp "github.com/linkedcreds-api/internal/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := clockwork.NewRealClock()

	// Verification code store.
	repo, err := newEntryRepo(cfg)
	if err != nil {
		log.Fatalf("verification store: %v", err)
	}
	store := verification.NewEntryStore(repo, clock, verification.StoreConfig{
		TTL:         cfg.Verification.TTL,
		MaxAttempts: cfg.Verification.MaxAttempts,
	})
	if cfg.Verification.SweepInterval > 0 {
		go store.Sweep(ctx, cfg.Verification.SweepInterval)
	}

	sendRL, confirmRL, err := newLimiters(cfg, clock)
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}

	// JWT provider (optional; without keys no tokens are issued and
	// authenticated routes are not mounted).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	deps := &transporthttp.Deps{}

	verifyDeps := verification.ServiceDeps{
		Store:          store,
		SendLimiter:    sendRL,
		ConfirmLimiter: confirmRL,
		Limits: verification.Limits{
			Send:    cfg.RateLimit.SendLimit,
			Confirm: cfg.RateLimit.ConfirmLimit,
		},
		Mailer:  newMailer(cfg),
		Clock:   clock,
		AppName: cfg.AppName,
		CodeTTL: cfg.Verification.TTL,
	}
	if cfg.SNSTopicARN != "" {
		if pub, err := sns.NewPublisher(ctx, cfg); err == nil {
			verifyDeps.Events = pub
		} else {
			log.Printf("WARN: SNS publisher not available: %v", err)
		}
	}
	if jwtProvider != nil {
		verifyDeps.Signer = jwtProvider
		deps.TokenVerifier = jwtProvider
		if cfg.GoogleClientID != "" {
			deps.Sessions = session.NewService(google.NewVerifier(cfg.GoogleClientID), jwtProvider)
		}
	}
	deps.Verification = verification.NewService(verifyDeps)

	// S3 credential documents, published to LinkedTrust on request.
	if s3Client, err := s3infra.NewClient(ctx, cfg); err == nil {
		deps.Credentials = credential.NewService(
			s3infra.NewStore(s3Client, cfg.S3BucketName),
			clock,
			credential.WithPublisher(linkedtrust.NewPublisher(cfg)),
		)
	} else {
		log.Printf("WARN: S3 not available: %v", err)
	}

	// DynamoDB analytics.
	if dynamoClient, err := dynamo.NewClient(ctx, cfg); err == nil {
		if cfg.DynamoBootstrap {
			dynamo.Bootstrap(ctx, dynamoClient, cfg.AnalyticsTable)
		}
		deps.Analytics = analytics.NewService(dynamo.NewAnalyticsRepo(dynamoClient, cfg.AnalyticsTable), clock)
	} else {
		log.Printf("WARN: DynamoDB not available: %v", err)
	}

	router, stopRouter := transporthttp.NewRouter(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func newEntryRepo(cfg *config.Config) (verification.Repository, error) {
	switch cfg.Verification.Store {
	case "file":
		return filestore.NewEntryRepo(cfg.Verification.FilePath), nil
	case "memory":
		return memstore.NewEntryRepo(cfg.Verification.MaxEntries)
	default:
		return nil, fmt.Errorf("unknown VERIFICATION_STORE %q", cfg.Verification.Store)
	}
}

func newLimiters(cfg *config.Config, clock clockwork.Clock) (verification.Limiter, verification.Limiter, error) {
	rl := cfg.RateLimit
	switch rl.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return ratelimit.NewRedis(client, "rl:send:", rl.Window, clock),
			ratelimit.NewRedis(client, "rl:confirm:", rl.Window, clock), nil
	case "memory":
		send, err := ratelimit.NewMemory(rl.SendMaxTokens, rl.Window, clock)
		if err != nil {
			return nil, nil, err
		}
		confirm, err := ratelimit.NewMemory(rl.ConfirmMaxTokens, rl.Window, clock)
		if err != nil {
			return nil, nil, err
		}
		return send, confirm, nil
	default:
		return nil, nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", rl.Backend)
	}
}

func newMailer(cfg *config.Config) verification.Mailer {
	if cfg.MailProvider == "resend" {
		return resend.NewMailer(cfg)
	}
	return smtp.NewMailer(cfg)
}
