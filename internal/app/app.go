package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/config"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/handlers"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/mailer"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/repository/postgres"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/service"
	"github.com/WxboySuper/Productivity-Hub-sub001/internal/worker"
	"go.uber.org/zap"
)

// App owns the process lifecycle: storage, services, HTTP server and
// the reminder worker, torn down in reverse order on shutdown.
type App struct {
	config    *config.Config
	storage   *postgres.Storage
	server    *http.Server
	worker    *worker.ReminderWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	if a.config.Database.Migrate {
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	storage, err := postgres.New(ctx, a.config.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, storage.Close)

	userRepo := postgres.NewUserRepo(storage)
	taskRepo := postgres.NewTaskRepo(storage)
	projectRepo := postgres.NewProjectRepo(storage)
	notificationRepo := postgres.NewNotificationRepo(storage)
	sessionRepo := postgres.NewSessionRepo(storage)
	tokenRepo := postgres.NewResetTokenRepo(storage)

	var resetMailer service.Mailer
	if a.config.Mailer.Enabled {
		smtpMailer, err := mailer.NewSMTP(a.config.Mailer)
		if err != nil {
			return fmt.Errorf("configuring mailer: %w", err)
		}
		resetMailer = smtpMailer
	} else {
		resetMailer = mailer.NewLog()
	}

	authService := service.NewAuthService(
		userRepo, sessionRepo, tokenRepo, resetMailer,
		a.config.Session.TTL, a.config.Mailer.ResetBaseURL,
	)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	projectService := service.NewProjectService(projectRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	a.worker = worker.NewReminderWorker(
		taskRepo, sessionRepo, notificationService,
		a.config.Worker.Interval, a.config.Worker.BatchSize,
	)

	cookie := handlers.CookieSettings{
		Name:   a.config.Session.CookieName,
		TTL:    a.config.Session.TTL,
		Secure: a.config.Session.Secure,
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:          handlers.NewAuthHandler(authService, cookie),
		Tasks:         handlers.NewTaskHandler(taskService),
		Projects:      handlers.NewProjectHandler(projectService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Health:        handlers.NewHealthHandler(storage),

		Sessions:       authService,
		CookieName:     a.config.Session.CookieName,
		AllowedOrigins: a.config.CORS.AllowedOrigins,
		RateLimitRPM:   a.config.Server.RateLimitRPM,
		RequestTimeout: a.config.Server.RequestTimeout,
	})

	a.server = &http.Server{
		Addr:    a.config.ServerAddr(),
		Handler: router,
	}

	return nil
}

// Run blocks until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	go a.worker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopWorker()
		a.runShutdowns()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: shutting down")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: server shutdown", err)
	}

	a.runShutdowns()
	return nil
}

func (a *App) runShutdowns() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
