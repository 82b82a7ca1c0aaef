package qa

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/smart-ai/modules/history"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Config configures the question-answering module.
type Config struct {
	Inference InferenceConfig
	Pool      PoolConfig
}

// AskPort is how the HTTP layer asks questions.
type AskPort interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

// QAModule owns the generation worker pool.
type QAModule struct {
	config    Config
	generator Generator
	history   history.HistoryPort
	pool      *Pool
	service   *Service
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*QAModule)(nil)
var _ mono.DependentModule = (*QAModule)(nil)
var _ mono.HealthCheckableModule = (*QAModule)(nil)
var _ AskPort = (*QAModule)(nil)

// NewModule creates a QAModule backed by the hosted inference API.
// The model credential is checked here so a missing token stops start-up.
func NewModule(config Config, logger types.Logger) (*QAModule, error) {
	client, err := NewInferenceClient(config.Inference)
	if err != nil {
		return nil, err
	}
	return NewModuleWithGenerator(config, client, logger), nil
}

// NewModuleWithGenerator creates a QAModule with a custom Generator.
func NewModuleWithGenerator(config Config, generator Generator, logger types.Logger) *QAModule {
	return &QAModule{
		config:    config,
		generator: generator,
		logger:    logger,
	}
}

// Name returns the module name.
func (m *QAModule) Name() string {
	return "qa"
}

// Dependencies returns the list of module dependencies.
func (m *QAModule) Dependencies() []string {
	return []string{"history"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *QAModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "history":
		m.history = history.NewHistoryAdapter(container)
	}
}

// Start launches the generation pool.
func (m *QAModule) Start(ctx context.Context) error {
	if m.history == nil {
		return fmt.Errorf("history dependency not set")
	}

	m.pool = NewPool(m.config.Pool, m.generator, m.logger)
	if err := m.pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start generation pool: %w", err)
	}
	m.service = NewService(m.pool, m.history, m.logger)

	m.logger.Info("QA module started", "model", m.config.Inference.Model)
	return nil
}

// Stop drains the generation pool.
func (m *QAModule) Stop(ctx context.Context) error {
	if m.pool != nil {
		if err := m.pool.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop generation pool: %w", err)
		}
	}
	m.logger.Info("QA module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *QAModule) Health(_ context.Context) mono.HealthStatus {
	if m.pool == nil || !m.pool.IsRunning() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "generation pool not running",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"model":   m.config.Inference.Model,
			"workers": m.config.Pool.NumWorkers,
		},
	}
}

// Ask answers a question. It is only usable after Start.
func (m *QAModule) Ask(ctx context.Context, question string) (*Answer, error) {
	if m.service == nil {
		return nil, errors.New("qa module not started")
	}
	return m.service.Ask(ctx, question)
}
