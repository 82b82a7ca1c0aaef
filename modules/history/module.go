package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/smart-ai/database"
	domain "github.com/example/smart-ai/domain/history"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Config configures the history module.
type Config struct {
	DBPath       string
	StoreTimeout time.Duration
}

// HistoryModule stores answered questions.
type HistoryModule struct {
	config Config
	db     *gorm.DB
	repo   *Repository
	logger types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*HistoryModule)(nil)
var _ mono.ServiceProviderModule = (*HistoryModule)(nil)
var _ mono.HealthCheckableModule = (*HistoryModule)(nil)

// NewModule creates a new HistoryModule.
func NewModule(config Config, logger types.Logger) *HistoryModule {
	return &HistoryModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *HistoryModule) Name() string {
	return "history"
}

// Start opens the history database.
func (m *HistoryModule) Start(_ context.Context) error {
	db, err := database.OpenSQLite(m.config.DBPath, database.Options{}, &domain.Entry{})
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	m.db = db
	m.repo = NewRepository(db)

	m.logger.Info("History module started", "database", m.config.DBPath)
	return nil
}

// Stop closes the history database.
func (m *HistoryModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	m.logger.Info("History module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *HistoryModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"driver": "sqlite",
		"path":   m.config.DBPath,
	}
	if count, err := m.repo.Count(ctx); err == nil {
		details["entries"] = count
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *HistoryModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "append", json.Unmarshal, json.Marshal, m.handleAppend,
	); err != nil {
		return fmt.Errorf("failed to register append service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	m.logger.Info("Registered services", "services", []string{"append", "list"})
	return nil
}

func (m *HistoryModule) handleAppend(ctx context.Context, req AppendRequest, _ *mono.Msg) (AppendResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.StoreTimeout)
	defer cancel()

	entry, err := m.repo.Append(ctx, req.Question, req.Answer)
	if err != nil {
		m.logger.Error("Failed to append history", "error", err)
		return AppendResponse{}, err
	}
	return AppendResponse{ID: entry.ID}, nil
}

func (m *HistoryModule) handleList(ctx context.Context, _ ListRequest, _ *mono.Msg) (ListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.StoreTimeout)
	defer cancel()

	entries, err := m.repo.ListAll(ctx)
	if err != nil {
		m.logger.Error("Failed to list history", "error", err)
		return ListResponse{}, err
	}
	return ListResponse{Entries: entries}, nil
}
