package cache

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// ViewCache stores computed per-user views (dashboard, calendar, chart) as JSON.
// Implementations must treat a miss and an undecodable entry the same way.
//
// Every user has a generation number that InvalidateUser advances. Readers
// capture it before loading the data a view is built from and hand it back to
// Set, which discards the view when the generation has moved on meanwhile.
type ViewCache interface {
	Generation(ctx context.Context, userID string) (int64, error)
	// Get decodes the cached value into dst and reports whether it was found.
	Get(ctx context.Context, userID, key string, dst any) (bool, error)
	// Set stores value only while the user's generation is still gen.
	Set(ctx context.Context, userID string, gen int64, key string, value any) error
	// InvalidateUser drops every view cached for the user.
	InvalidateUser(ctx context.Context, userID string) error
}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	logger      *slog.Logger
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// NewManager creates a new cache manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		caches:      make([]Cleaner, 0),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
		logger:      logger,
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			totalCleaned := 0
			for _, cache := range m.caches {
				totalCleaned += cache.CleanExpired()
			}
			if totalCleaned > 0 {
				m.logger.Debug("Expired cache entries removed", log.FieldComponent, log.ComponentCache, "count", totalCleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine. Only call it after StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
