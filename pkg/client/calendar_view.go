package client

import (
	"context"
	"sync"
	"sync/atomic"
)

// CalendarView tracks the month a user is looking at. Navigation may fire
// requests faster than they complete; only the response to the most
// recently issued request is applied, older ones fail with ErrStale.
type CalendarView struct {
	client *Client

	seq atomic.Uint64

	mu        sync.Mutex
	requested Period
	current   *CalendarMonth
}

// NewCalendarView starts at p. A zero p lets the server pick the current month.
func NewCalendarView(c *Client, p Period) *CalendarView {
	return &CalendarView{client: c, requested: p}
}

// Period is the most recently requested month.
func (v *CalendarView) Period() Period {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.requested
}

// Current returns the displayed month, if any response has been applied.
func (v *CalendarView) Current() (CalendarMonth, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return CalendarMonth{}, false
	}
	return *v.current, true
}

// Load requests p and displays it unless a newer request was issued meanwhile.
func (v *CalendarView) Load(ctx context.Context, p Period) (CalendarMonth, error) {
	v.mu.Lock()
	v.requested = p
	seq := v.seq.Add(1)
	v.mu.Unlock()

	month, err := v.client.Calendar(ctx, p)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq.Load() {
		return CalendarMonth{}, ErrStale
	}
	if err != nil {
		return CalendarMonth{}, err
	}
	v.current = &month
	if p.IsZero() {
		v.requested = month.Period
	}
	return month, nil
}

// Reload fetches the requested month again.
func (v *CalendarView) Reload(ctx context.Context) (CalendarMonth, error) {
	return v.Load(ctx, v.Period())
}

// Next moves one month forward from the last requested month.
func (v *CalendarView) Next(ctx context.Context) (CalendarMonth, error) {
	return v.Load(ctx, v.step(1))
}

// Prev moves one month back from the last requested month.
func (v *CalendarView) Prev(ctx context.Context) (CalendarMonth, error) {
	return v.Load(ctx, v.step(-1))
}

func (v *CalendarView) step(dir int) Period {
	v.mu.Lock()
	p := v.requested
	cur := v.current
	v.mu.Unlock()

	if p.IsZero() && cur != nil {
		p = cur.Period
	}
	if p.IsZero() {
		return p
	}
	if dir > 0 {
		return p.Next()
	}
	return p.Prev()
}
