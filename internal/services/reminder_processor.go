package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

// Mailer delivers reminder emails.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderProcessorConfig holds configuration for the reminder processor
type ReminderProcessorConfig struct {
	// Schedule is a standard five-field cron spec (default: 08:00 daily)
	Schedule string

	// DueSoonDays is how many days ahead a bill counts as due soon (default: 3)
	DueSoonDays int

	// RunOnStart runs one pass immediately when started
	RunOnStart bool
}

// DefaultReminderProcessorConfig returns sensible defaults
func DefaultReminderProcessorConfig() ReminderProcessorConfig {
	return ReminderProcessorConfig{
		Schedule:    "0 8 * * *",
		DueSoonDays: 3,
		RunOnStart:  true,
	}
}

// ReminderResult summarizes one pass.
type ReminderResult struct {
	Checked  int
	Notified int
	Emailed  int
	Skipped  int
}

// ReminderProcessor turns unpaid bills into feed reminders on a cron schedule.
type ReminderProcessor struct {
	store  store.Store
	mailer Mailer
	config ReminderProcessorConfig
	opts   Options
	logger *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	startup sync.WaitGroup
}

// NewReminderProcessor creates a processor. mailer may be nil to disable email.
func NewReminderProcessor(s store.Store, mailer Mailer, config ReminderProcessorConfig, opts Options) *ReminderProcessor {
	if config.Schedule == "" {
		config.Schedule = DefaultReminderProcessorConfig().Schedule
	}
	if config.DueSoonDays < 0 {
		config.DueSoonDays = 0
	}
	opts = opts.withDefaults()
	return &ReminderProcessor{
		store:  s,
		mailer: mailer,
		config: config,
		opts:   opts,
		logger: opts.logger(log.ComponentReminder),
	}
}

// Start schedules the reminder pass. Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("reminder processor is already running")
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(p.config.Schedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", p.config.Schedule, err)
	}
	p.cron = c
	p.running = true
	c.Start()

	if p.config.RunOnStart {
		p.startup.Add(1)
		go func() {
			defer p.startup.Done()
			p.run(ctx)
		}()
	}

	p.logger.InfoContext(ctx, "Reminder processor started",
		"schedule", p.config.Schedule,
		"due_soon_days", p.config.DueSoonDays)
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cronDone := p.cron.Stop()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		p.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.InfoContext(ctx, "Reminder processor stopped gracefully", log.FieldOperation, log.OpShutdown)
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Reminder processor stop timed out", log.FieldOperation, log.OpShutdown)
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.cron = nil
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently scheduled
func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReminderProcessor) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := p.RunOnce(ctx, p.opts.today())
	if err != nil {
		p.logger.ErrorContext(ctx, "Reminder pass failed", log.FieldOperation, log.OpRemind, log.FieldError, err)
		return
	}
	p.logger.InfoContext(ctx, "Reminder pass completed",
		log.FieldOperation, log.OpRemind,
		"checked", res.Checked,
		"notified", res.Notified,
		"emailed", res.Emailed,
		"skipped", res.Skipped)
}

// RunOnce reminds every unpaid bill due on or before today plus the window.
// Each bill gets at most one reminder of a kind per day; a repeated run on the
// same day skips the bills it has already reminded.
func (p *ReminderProcessor) RunOnce(ctx context.Context, today core.Date) (ReminderResult, error) {
	var res ReminderResult

	bills, err := p.store.ListUnpaidDueBefore(ctx, today.AddDays(p.config.DueSoonDays))
	if err != nil {
		return res, fmt.Errorf("list unpaid bills: %w", err)
	}

	var errs []error
	for _, b := range bills {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		kind, rule, ok := matchReminder(b, today, p.config.DueSoonDays)
		if !ok {
			continue
		}
		message := rule.Message(b, p.opts.Currency)

		err := p.store.AddNotification(ctx, core.Notification{
			ID:        reminderID(b, kind, today),
			UserID:    b.UserID,
			Message:   message,
			CreatedAt: p.opts.Now().UTC(),
		})
		if errors.Is(err, store.ErrConflict) {
			res.Skipped++
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("add reminder for bill %s: %w", b.ID, err))
			continue
		}
		res.Notified++
		p.opts.invalidate(ctx, b.UserID)

		p.logger.DebugContext(ctx, "Bill reminder added",
			log.FieldUserID, b.UserID, log.FieldBillID, b.ID, "kind", string(kind))

		if p.email(ctx, b.UserID, message) {
			res.Emailed++
		}
	}

	return res, errors.Join(errs...)
}

// reminderID names the feed entry for one bill, kind and day. The store
// rejects a second entry with the same ID.
func reminderID(b core.Bill, kind ReminderKind, today core.Date) string {
	return fmt.Sprintf("reminder:%s:%s:%s", b.ID, kind, today)
}

// email sends the reminder to the bill owner. Failures are logged only.
func (p *ReminderProcessor) email(ctx context.Context, userID, message string) bool {
	if p.mailer == nil {
		return false
	}
	u, err := p.store.GetUser(ctx, userID)
	if err != nil {
		p.logger.WithComponent(log.ComponentNotify).WarnContext(ctx, "Failed to load reminder recipient",
			log.FieldUserID, userID, log.FieldError, err)
		return false
	}
	if err := p.mailer.Send(ctx, u.Email, "Bill reminder", message); err != nil {
		p.logger.WithComponent(log.ComponentNotify).WarnContext(ctx, "Failed to send reminder email",
			log.FieldUserID, userID, log.FieldError, err)
		return false
	}
	return true
}
