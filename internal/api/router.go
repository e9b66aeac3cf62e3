package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigia/internal/directory"
	"github.com/saturnino-fabrica-de-software/vigia/internal/feed"
	"github.com/saturnino-fabrica-de-software/vigia/internal/policy"
	"github.com/saturnino-fabrica-de-software/vigia/internal/registration"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

type Dependencies struct {
	Buffer    *feed.Buffer
	Session   *registration.Session
	Editor    *policy.Editor
	Directory *directory.Directory
	Hub       *ws.Hub
	StreamURL string
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Vigia Console",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)

	api := r.app.Group("/api")

	eventsHandler := handler.NewEventsHandler(r.deps.Buffer)
	api.Get("/events", eventsHandler.List)
	api.Get("/events/recent", eventsHandler.Recent)
	api.Get("/events/subjects", eventsHandler.Subjects)

	usersHandler := handler.NewUsersHandler(r.deps.Directory, r.deps.Editor)
	api.Get("/users", usersHandler.List)
	api.Post("/users/delete", usersHandler.Delete)
	api.Post("/users/rename", usersHandler.Rename)
	api.Post("/users/access", usersHandler.UpdateAccess)

	registerHandler := handler.NewRegisterHandler(r.deps.Session)
	api.Post("/register", registerHandler.Start)
	api.Post("/register/update", registerHandler.Update)
	api.Get("/register/status", registerHandler.Status)
	api.Post("/register/ack", registerHandler.Acknowledge)

	streamHandler := handler.NewStreamHandler(r.deps.StreamURL)
	api.Get("/stream", streamHandler.Live)

	// Dashboard live updates
	r.app.Use("/ws", ws.UpgradeMiddleware())
	r.app.Get("/ws", ws.Handler(r.deps.Hub))
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (r *Router) App() *fiber.App {
	return r.app
}
