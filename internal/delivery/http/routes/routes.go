package routes

import (
	"hireflow/internal/delivery/http/handler"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health       *handler.HealthHandler
	auth         *handler.AuthHandler
	applications *handler.ApplicationHandler
	matches      *handler.MatchHandler
	jobs         *handler.JobHandler
	messages     *handler.MessageHandler
	wsHandler    *ws.Handler

	authMW      *middleware.AuthMiddleware
	errorMW     *middleware.ErrorMiddleware
	accessLogMW *middleware.AccessLogMiddleware
}

func NewRegistry(
	health *handler.HealthHandler,
	auth *handler.AuthHandler,
	applications *handler.ApplicationHandler,
	matches *handler.MatchHandler,
	jobs *handler.JobHandler,
	messages *handler.MessageHandler,
	wsHandler *ws.Handler,
	authMW *middleware.AuthMiddleware,
	errorMW *middleware.ErrorMiddleware,
	accessLogMW *middleware.AccessLogMiddleware,
) *Registry {
	return &Registry{
		health:       health,
		auth:         auth,
		applications: applications,
		matches:      matches,
		jobs:         jobs,
		messages:     messages,
		wsHandler:    wsHandler,
		authMW:       authMW,
		errorMW:      errorMW,
		accessLogMW:  accessLogMW,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	app.Use(r.accessLogMW.Middleware())
	app.Use(r.errorMW.Middleware())

	r.health.RegisterRoutes(app)
	app.Get("/ws", r.wsHandler.HandleEvents)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	r.auth.RegisterRoutes(v1.Group("/auth"))

	authed := v1.Group("", r.authMW.Middleware())
	r.applications.RegisterRoutes(authed)
	r.matches.RegisterRoutes(authed)
	r.jobs.RegisterRoutes(authed)
	r.messages.RegisterRoutes(authed)
}
