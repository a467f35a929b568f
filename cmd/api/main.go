package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/timekeeping-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/timekeeping-backend-go/internal/service/attendance"
	mplService "github.com/cmlabs-hris/timekeeping-backend-go/internal/service/mpl"
	notificationService "github.com/cmlabs-hris/timekeeping-backend-go/internal/service/notification"
	overtimeService "github.com/cmlabs-hris/timekeeping-backend-go/internal/service/overtime"
	"github.com/go-chi/httplog/v3"
)

const (
	sseHubBuffer    = 16
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
		logger.Info("database schema ensured")
	}

	loc := cfg.Location()
	clk := clock.Real{}

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	configRepo := postgresql.NewOvertimeConfigRepository(db)
	requestRepo := postgresql.NewOvertimeRequestRepository(db)
	mplRepo := postgresql.NewMplRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	txManager := postgresql.NewTxManager(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	hub := sse.NewHub(sseHubBuffer, logger)
	notifSvc := notificationService.NewNotificationService(notificationRepo, userRepo, hub, clk, logger, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	})

	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		configRepo,
		requestRepo,
		userRepo,
		notifSvc,
		clk,
		loc,
		logger,
	)
	overtimeSvc := overtimeService.NewOvertimeService(
		txManager,
		configRepo,
		requestRepo,
		userRepo,
		notifSvc,
		clk,
		logger,
	)
	mplSvc := mplService.NewMplService(
		txManager,
		mplRepo,
		attendanceRepo,
		userRepo,
		notifSvc,
		clk,
		loc,
		logger,
	)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		logger,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewOvertimeHandler(overtimeSvc),
		appHTTP.NewMplHandler(mplSvc),
		appHTTP.NewNotificationHandler(notifSvc, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		notifSvc.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	// flush queued notifications before the pool closes
	notifSvc.Stop()
	return nil
}
