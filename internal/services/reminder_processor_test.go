package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/store/memory"
)

func seedBills(t *testing.T, st *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, core.User{ID: "u1", Email: "ana@example.com"}))

	bills := []core.Bill{
		{ID: "b1", UserID: "u1", Name: "Rent", Amount: core.ParseAmount("800"), DueDate: core.NewDate(2024, 3, 10)},
		{ID: "b2", UserID: "u1", Name: "Phone", Amount: core.ParseAmount("25"), DueDate: core.NewDate(2024, 3, 15)},
		{ID: "b3", UserID: "u1", Name: "Water", Amount: core.ParseAmount("30"), DueDate: core.NewDate(2024, 3, 17)},
		{ID: "b4", UserID: "u1", Name: "Insurance", Amount: core.ParseAmount("90"), DueDate: core.NewDate(2024, 3, 30)},
		{ID: "b5", UserID: "u1", Name: "Gym", Amount: core.ParseAmount("40"), DueDate: core.NewDate(2024, 3, 1), IsPaid: true},
	}
	for _, b := range bills {
		require.NoError(t, st.CreateBill(ctx, b))
	}
}

func TestReminderProcessor_RunOnce(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedBills(t, st)
	opts, _ := testOptions()
	mailer := &fakeMailer{}
	p := NewReminderProcessor(st, mailer, ReminderProcessorConfig{DueSoonDays: 3}, opts)

	res, err := p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 3, Notified: 3, Emailed: 3}, res)

	assert.ElementsMatch(t, []string{
		"Bill overdue: Rent was due 2024-03-10",
		"Bill due today: Phone (₹25.00)",
		"Bill due soon: Water on 2024-03-17 (₹30.00)",
	}, messages(t, st, "u1"))
	assert.Len(t, mailer.sent, 3)
	assert.Contains(t, mailer.sent[0], "ana@example.com: ")

	again, err := p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 3, Skipped: 3}, again)
	assert.Len(t, messages(t, st, "u1"), 3)
}

func TestReminderProcessor_EmailFailureStillNotifies(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedBills(t, st)
	opts, _ := testOptions()
	p := NewReminderProcessor(st, &fakeMailer{err: errBrokerDown}, ReminderProcessorConfig{DueSoonDays: 3}, opts)

	res, err := p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Notified)
	assert.Zero(t, res.Emailed)
}

func TestReminderProcessor_WithoutMailer(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedBills(t, st)
	opts, _ := testOptions()
	p := NewReminderProcessor(st, nil, ReminderProcessorConfig{DueSoonDays: 0}, opts)

	res, err := p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 2, Notified: 2}, res)
}

func TestReminderProcessor_Lifecycle(t *testing.T) {
	st := memory.New()
	seedBills(t, st)
	opts, _ := testOptions()
	p := NewReminderProcessor(st, nil, ReminderProcessorConfig{Schedule: "0 8 * * *", DueSoonDays: 3, RunOnStart: true}, opts)

	ctx := context.Background()
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx), "second start fails")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))
	assert.False(t, p.IsRunning())

	// The startup pass has finished by the time Stop returns.
	list, err := st.ListNotifications(ctx, "u1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	assert.NoError(t, p.Stop(stopCtx), "stopping twice is a no-op")
}

func TestReminderProcessor_InvalidSchedule(t *testing.T) {
	opts, _ := testOptions()
	p := NewReminderProcessor(memory.New(), nil, ReminderProcessorConfig{Schedule: "whenever"}, opts)
	assert.Error(t, p.Start(context.Background()))
	assert.False(t, p.IsRunning())
}

func TestReminderProcessor_OncePerBillPerDay(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.CreateUser(ctx, core.User{ID: "u1", Email: "ana@example.com"}))
	for _, id := range []string{"b1", "b2"} {
		require.NoError(t, st.CreateBill(ctx, core.Bill{
			ID: id, UserID: "u1", Name: "Rent", Amount: core.ParseAmount("800"), DueDate: core.NewDate(2024, 3, 10),
		}))
	}
	opts, _ := testOptions()
	p := NewReminderProcessor(st, nil, ReminderProcessorConfig{DueSoonDays: 3}, opts)

	res, err := p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 2, Notified: 2}, res, "bills sharing name and due date are reminded separately")

	res, err = p.RunOnce(ctx, march15)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 2, Skipped: 2}, res)

	res, err = p.RunOnce(ctx, core.NewDate(2024, 3, 16))
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Checked: 2, Notified: 2}, res, "overdue bills are reminded again the next day")
	assert.Len(t, messages(t, st, "u1"), 4)
}
