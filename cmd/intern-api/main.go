package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/ItsOuaail/aptiv-interns-platform/api/swagger"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/handler"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/repository"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/cache"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/config"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/database"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/events"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/logger"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/mail"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/storage"
)

// @title Aptiv Interns Platform API
// @version 1.0.0
// @description Intern registration, search and messaging for the HR team.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.MigrationsPath); err != nil {
			return err
		}
		logr.Info("database migrations applied")
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := newPublisher(cfg.Events, logr)
	if err != nil {
		return err
	}
	defer publisher.Close()

	mailer, err := newMailer(cfg.Mail, logr)
	if err != nil {
		return err
	}

	files, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("prepare document storage: %w", err)
	}
	logr.Info("document storage ready", zap.String("dir", files.BaseDir()))

	app := wire(cfg, logr, db, redisClient, publisher, mailer, files)

	if cfg.HR.Enabled() {
		hr, err := app.identity.EnsureHR(ctx, cfg.HR.Email, cfg.HR.Password, cfg.HR.FirstName, cfg.HR.LastName)
		if err != nil {
			return fmt.Errorf("bootstrap HR account: %w", err)
		}
		logr.Info("bootstrap HR account ready", zap.String("user_id", hr.ID), zap.String("email", hr.Email))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
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

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type application struct {
	metrics       *service.MetricsService
	auth          *service.AuthService
	identity      *service.IdentityService
	interns       *service.InternService
	batch         *service.BatchService
	search        *service.SearchService
	messages      *service.MessageService
	notifications *service.NotificationService
	activities    *service.ActivityService
	attendance    *service.AttendanceService
	documents     *service.DocumentService
	checks        map[string]handler.Pinger
}

func wire(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, publisher events.Publisher, mailer mail.Sender, files *storage.LocalStorage) *application {
	validate := validator.New()
	metrics := service.NewMetricsService()

	internRepo := repository.NewInternRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr.Named("cache"))
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Search.CacheTTL, logr.Named("cache"), redisClient != nil)

	notifications := service.NewNotificationService(notificationRepo, logr.Named("notifications"))

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	return &application{
		metrics: metrics,
		auth: service.NewAuthService(userRepo, validate, logr.Named("auth"), service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		identity: service.NewIdentityService(userRepo, logr.Named("identity")),
		interns:  service.NewInternService(internRepo, publisher, cacheSvc, validate, logr.Named("interns")),
		batch: service.NewBatchService(internRepo, userRepo, notifications, mailer, publisher, cacheSvc, metrics, validate, logr.Named("batch"), service.BatchOptions{
			MaxRecords:       cfg.Batch.MaxRecords,
			CredentialLength: cfg.Batch.CredentialLength,
			LoginURL:         cfg.Batch.LoginURL,
		}),
		search:        service.NewSearchService(internRepo, cacheSvc, metrics, logr.Named("search")),
		messages:      service.NewMessageService(internRepo, userRepo, messageRepo, notifications, mailer, metrics, validate, logr.Named("messages")),
		notifications: notifications,
		activities:    service.NewActivityService(repository.NewActivityRepository(db), internRepo, validate, logr.Named("activities")),
		attendance:    service.NewAttendanceService(repository.NewAttendanceRepository(db), internRepo, validate, logr.Named("attendance")),
		documents: service.NewDocumentService(
			repository.NewDocumentRepository(db),
			files,
			storage.NewSignedURLSigner(cfg.Storage.SigningSecret, cfg.Storage.LinkTTL),
			internRepo,
			logr.Named("documents"),
		),
		checks: checks,
	}
}

func newPublisher(cfg config.EventsConfig, logr *zap.Logger) (events.Publisher, error) {
	if cfg.URL == "" {
		logr.Info("event publishing disabled")
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange, logr.Named("events"))
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	return publisher, nil
}

func newMailer(cfg config.MailConfig, logr *zap.Logger) (mail.Sender, error) {
	if !cfg.Enabled {
		logr.Warn("mail delivery disabled, messages will only be logged")
		return mail.NewLogSender(logr.Named("mail")), nil
	}
	sender, err := mail.NewSMTPSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure smtp: %w", err)
	}
	return sender, nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
