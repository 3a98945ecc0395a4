package backend

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/backend/memory"
	"finboard/internal/backend/rest"
	applog "finboard/internal/log"
)

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// HTTP backend
	BaseURL string
	Timeout time.Duration

	// CategoryCacheTTL reuses category listings; zero disables the cache.
	CategoryCacheTTL time.Duration

	// Memory backend
	DataDirectory string
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (Backend, error) {
	switch config.Type {
	case HTTPBackend:
		client, err := rest.New(config.BaseURL,
			rest.WithTimeout(config.Timeout),
			rest.WithLogger(f.logger))
		if err != nil {
			return nil, fmt.Errorf("init http backend: %w", err)
		}
		f.logger.Info("Initialized HTTP backend",
			"base_url", client.BaseURL(),
			"timeout", config.Timeout,
			"category_cache_ttl", config.CategoryCacheTTL)
		if config.CategoryCacheTTL > 0 {
			return WithCategoryCache(client, config.CategoryCacheTTL), nil
		}
		return client, nil
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		f.logger.Info("Initialized memory backend", "data_directory", dataDir)
		return memory.NewFromFiles(dataDir), nil
	default:
		return nil, fmt.Errorf("invalid backend type: %q", config.Type)
	}
}
