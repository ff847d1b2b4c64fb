package services

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/log"
	"ledger/internal/store"
)

// EventPublisher announces transaction changes to other processes.
type EventPublisher interface {
	PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChanged) error
}

// Options are shared by every service. Zero values fall back to defaults.
type Options struct {
	Currency   string
	Thresholds engine.Thresholds
	Cache      cache.ViewCache
	Publisher  EventPublisher
	Logger     *slog.Logger
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = core.DefaultCurrencySymbol
	}
	if o.Thresholds == (engine.Thresholds{}) {
		o.Thresholds = engine.DefaultThresholds()
	}
	if o.Cache == nil {
		o.Cache = cache.NopViewCache{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// logger tags the shared slog logger with a component.
func (o Options) logger(component string) *log.Logger {
	return log.Wrap(o.Logger, component)
}

func (o Options) today() core.Date {
	return core.DateOf(o.Now())
}

// invalidate drops the user's cached views. Failures are logged only.
func (o Options) invalidate(ctx context.Context, userID string) {
	if err := o.Cache.InvalidateUser(ctx, userID); err != nil {
		o.logger(log.ComponentCache).WarnContext(ctx, "Failed to invalidate cached views",
			log.FieldUserID, userID, log.FieldError, err)
	}
}

// addNotification appends one feed entry for the user.
func addNotification(ctx context.Context, s store.NotificationStore, userID, message string, now time.Time) error {
	return s.AddNotification(ctx, core.Notification{
		ID:        core.NewID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: now.UTC(),
	})
}
