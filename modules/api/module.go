package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/smart-ai/modules/auth"
	"github.com/example/smart-ai/modules/history"
	"github.com/example/smart-ai/modules/qa"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config configures the HTTP API.
type Config struct {
	Addr             string
	CORSAllowOrigins string
	// RequireAuthForQA puts /ask and /history behind bearer-token checks.
	RequireAuthForQA bool
	AskTimeout       time.Duration
}

// APIModule is the HTTP API module.
type APIModule struct {
	config      Config
	app         *fiber.App
	auth    auth.AuthPort
	history history.HistoryPort
	asker   qa.AskPort
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. Auth and questions are called directly
// so bcrypt and generation run on the request goroutine; history is reached
// through its service container.
func NewModule(config Config, authPort auth.AuthPort, asker qa.AskPort, logger types.Logger) *APIModule {
	return &APIModule{
		config: config,
		auth:   authPort,
		asker:  asker,
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "history", "qa"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "history":
		m.history = history.NewHistoryAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(ctx context.Context) error {
	if m.auth == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.history == nil {
		return fmt.Errorf("history dependency not set")
	}
	if m.asker == nil {
		return fmt.Errorf("qa dependency not set")
	}

	handlers := NewHandlers(m.auth, m.asker, m.history, m.config.AskTimeout, m.logger)
	m.app = NewApp(m.config, handlers, m.auth)

	errChan := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.config.Addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		m.logger.Info("HTTP server started",
			"addr", m.config.Addr,
			"qa_requires_auth", m.config.RequireAuthForQA)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop waits for in-flight requests and shuts the server down.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":             m.config.Addr,
			"qa_requires_auth": m.config.RequireAuthForQA,
		},
	}
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(config Config, handlers *Handlers, authPort auth.AuthPort) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSAllowOrigins,
		AllowCredentials: config.CORSAllowOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", handlers.Health)
	app.Post("/register", handlers.Register)
	app.Post("/token", handlers.Token)

	qaRoutes := []fiber.Handler{}
	if config.RequireAuthForQA {
		qaRoutes = append(qaRoutes, AuthMiddleware(authPort))
	}
	app.Post("/ask", append(qaRoutes, handlers.Ask)...)
	app.Get("/history", append(qaRoutes, handlers.History)...)

	return app
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
