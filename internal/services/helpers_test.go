package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
)

// stepClock advances one second on every call so feed order is deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{now: start}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.TransactionChanged
	err  error
}

func (p *recordingPublisher) PublishTransactionChanged(_ context.Context, msg *amqp.TransactionChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) ops() []amqp.Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Op, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Op)
	}
	return out
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+": "+body)
	return nil
}

var errBrokerDown = errors.New("broker down")

// testOptions is 2024-03-15 10:00 UTC with a local view cache.
func testOptions() (Options, *recordingPublisher) {
	pub := &recordingPublisher{}
	return Options{
		Cache:     cache.NewLocalViewCache(100, time.Minute),
		Publisher: pub,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       newStepClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)).Now,
	}, pub
}
