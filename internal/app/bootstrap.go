package app

import (
	"context"
	"fmt"
	"strings"

	"hireflow/internal/config"
	"hireflow/internal/database/seeder"
	"hireflow/internal/delivery/http/handler"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/delivery/http/routes"
	"hireflow/internal/domain/application"
	"hireflow/internal/infrastructure/notify"
	"hireflow/internal/pkg/jwt"
	"hireflow/internal/pkg/logger"
	"hireflow/internal/repository"
	"hireflow/internal/usecase"
	"hireflow/internal/usecase/otp"
	"hireflow/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber  *fiber.App
	Hub    *ws.Hub
	Logger *zap.Logger
}

// fanoutListener delivers a lifecycle event to every interested consumer:
// the conversation manager posts a system message, the websocket publisher
// pushes the event to the applicant's open sockets.
type fanoutListener struct {
	listeners []usecase.StatusListener
}

func (f fanoutListener) StatusChanged(ctx context.Context, a application.Application) {
	for _, l := range f.listeners {
		if l != nil {
			l.StatusChanged(ctx, a)
		}
	}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		return nil, nil, err
	}

	container, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	users := repository.NewPostgresUserRepository(container.DB)
	profiles := repository.NewPostgresProfileRepository(container.DB)
	jobs := repository.NewPostgresJobRepository(container.DB)
	applications := repository.NewPostgresApplicationRepository(container.DB)
	conversations := repository.NewPostgresConversationRepository(container.DB)
	otpSessions := repository.NewRedisSessionStore(container.Cache, cfg.OTP.TTL)

	if err := runSeeders(cfg, users, profiles, jobs); err != nil {
		_ = container.Close()
		return nil, nil, err
	}

	jwtSvc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.RefreshExpiresIn)

	hub := ws.NewHub(log)
	go hub.Run()
	publisher := ws.NewPublisher(hub, log)

	otpSvc := otp.NewService(otpSessions, notify.NewLogNotifier(log), cfg.OTP.TTL, cfg.OTP.MaxAttempts, log)
	authSvc := usecase.NewAuthService(otpSvc, users, jwtSvc)
	matchSvc := usecase.NewMatchingService(jobs, applications, profiles, container.Cache, log)
	jobSvc := usecase.NewJobService(jobs, log)
	convSvc := usecase.NewConversationService(conversations, users, publisher, log)
	appSvc := usecase.NewApplicationService(
		applications,
		jobs,
		notify.NewLogScheduler(log),
		fanoutListener{listeners: []usecase.StatusListener{convSvc, publisher}},
		matchSvc,
		cfg.Hiring.InterviewLeadTime,
		log,
	)

	authMW := middleware.NewAuthMiddleware(jwtSvc)
	registry := routes.NewRegistry(
		handler.NewHealthHandler(),
		handler.NewAuthHandler(authSvc, cfg.OTP.ResendCooldown),
		handler.NewApplicationHandler(appSvc, authMW),
		handler.NewMatchHandler(matchSvc, authMW),
		handler.NewJobHandler(jobSvc),
		handler.NewMessageHandler(convSvc),
		ws.NewHandler(hub, jwtSvc, log),
		authMW,
		middleware.NewErrorMiddleware(log),
		middleware.NewAccessLogMiddleware(log),
	)

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})
	registry.Register(f)

	cleanup := func() error {
		err := container.Close()
		_ = log.Sync()
		return err
	}
	return &App{Fiber: f, Hub: hub, Logger: log}, cleanup, nil
}

func runSeeders(cfg config.Config, users repository.UserRepository, profiles repository.ProfileRepository, jobs repository.JobRepository) error {
	runner := seeder.Runner{Seeders: []seeder.Seeder{
		seeder.AdminSeeder{Users: users, Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword},
	}}
	if cfg.Seed.DemoData {
		runner.Seeders = append(runner.Seeders, seeder.DemoDataSeeder{Users: users, Profiles: profiles, Jobs: jobs})
	}
	return runner.Run(context.Background())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
