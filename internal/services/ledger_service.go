package services

import (
	"context"
	"fmt"
	"strings"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

// LedgerService owns transactions, bills and the notification feed.
// Writes are saved first; the notification, change event and cache
// invalidation that follow never fail the request.
type LedgerService struct {
	store  store.Store
	opts   Options
	logger *log.Logger
	events *log.StructuredLogger
}

func NewLedgerService(s store.Store, opts Options) *LedgerService {
	opts = opts.withDefaults()
	logger := opts.logger(log.ComponentLedger)
	return &LedgerService{store: s, opts: opts, logger: logger, events: log.NewStructuredLogger(logger)}
}

// TransactionInput is the user-editable part of a transaction.
type TransactionInput struct {
	Type     core.TransactionType `json:"type"`
	Category string               `json:"category"`
	Item     string               `json:"item"`
	Amount   core.Money           `json:"amount"`
	Date     core.Date            `json:"date"`
}

func (in TransactionInput) apply(t *core.Transaction) {
	t.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	t.Category = strings.TrimSpace(in.Category)
	t.Item = strings.TrimSpace(in.Item)
	t.Amount = in.Amount
	t.Date = in.Date
}

// BillInput is the user-editable part of a bill.
type BillInput struct {
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	DueDate core.Date  `json:"due_date"`
}

func (in BillInput) apply(b *core.Bill) {
	b.Name = strings.TrimSpace(in.Name)
	b.Amount = in.Amount
	b.DueDate = in.DueDate
}

// Transactions

func (s *LedgerService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		ID:        core.NewID(),
		UserID:    userID,
		CreatedAt: s.opts.Now().UTC(),
	}
	in.apply(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.afterTransactionWrite(ctx, t, amqp.OpUpsert, "Added: "+s.describe(t))
	return t, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id string, in TransactionInput) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction %s: %w", id, err)
	}
	in.apply(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.afterTransactionWrite(ctx, t, amqp.OpUpsert, "Updated: "+s.describe(t))
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.afterTransactionWrite(ctx, core.Transaction{ID: id, UserID: userID}, amqp.OpDelete,
		"Deleted transaction with ID: "+id)
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction %s: %w", id, err)
	}
	return t, nil
}

// ListTransactions lists the user's transactions. The filter's UserID is always overwritten.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, f store.TransactionFilter) ([]core.Transaction, error) {
	f.UserID = userID
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid(core.ErrInvalidType)
	}
	list, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

// describe renders "+ ₹12.00: item" for the notification feed.
func (s *LedgerService) describe(t core.Transaction) string {
	return fmt.Sprintf("%s %s: %s", t.Type.Sign(), t.Amount.Format(s.opts.Currency), t.Item)
}

func (s *LedgerService) afterTransactionWrite(ctx context.Context, t core.Transaction, op amqp.Op, message string) {
	s.notify(ctx, t.UserID, message)
	s.publish(ctx, amqp.NewTransactionChanged(t.ID, t.UserID, op))
	s.opts.invalidate(ctx, t.UserID)

	s.events.LogTransactionSaved(ctx, string(op), t.UserID, t.ID, string(t.Type), t.Category, t.Amount.Cents)
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.TransactionChanged) {
	if s.opts.Publisher == nil {
		s.logger.WithComponent(log.ComponentAMQP).DebugContext(ctx, "AMQP publisher not available, skipping change event",
			log.FieldTransactionID, msg.ID)
		return
	}
	if err := s.opts.Publisher.PublishTransactionChanged(ctx, msg); err != nil {
		// The transaction is saved; the export catches up on the next change.
		s.events.LogError(ctx, "Failed to publish change event", err, log.ComponentAMQP, string(msg.Op),
			log.LogFields{log.FieldUserID: msg.UserID, log.FieldTransactionID: msg.ID})
	}
}

// Bills

func (s *LedgerService) CreateBill(ctx context.Context, userID string, in BillInput) (core.Bill, error) {
	b := core.Bill{
		ID:        core.NewID(),
		UserID:    userID,
		CreatedAt: s.opts.Now().UTC(),
	}
	in.apply(&b)
	if err := b.Validate(); err != nil {
		return core.Bill{}, invalid(err)
	}

	if err := s.store.CreateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	s.afterBillWrite(ctx, userID, fmt.Sprintf("Added Bill: %s (Due: %s)", b.Name, b.DueDate))
	return b, nil
}

func (s *LedgerService) UpdateBill(ctx context.Context, userID, id string, in BillInput) (core.Bill, error) {
	b, err := s.store.GetBill(ctx, userID, id)
	if err != nil {
		return core.Bill{}, fmt.Errorf("load bill %s: %w", id, err)
	}
	in.apply(&b)
	if err := b.Validate(); err != nil {
		return core.Bill{}, invalid(err)
	}

	if err := s.store.UpdateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("update bill %s: %w", id, err)
	}

	s.afterBillWrite(ctx, userID, fmt.Sprintf("Updated Bill: %s (Due: %s)", b.Name, b.DueDate))
	return b, nil
}

func (s *LedgerService) DeleteBill(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBill(ctx, userID, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.afterBillWrite(ctx, userID, "Deleted Bill ID: "+id)
	return nil
}

func (s *LedgerService) MarkBillPaid(ctx context.Context, userID, id string) error {
	if err := s.store.MarkBillPaid(ctx, userID, id); err != nil {
		return fmt.Errorf("mark bill %s paid: %w", id, err)
	}
	s.afterBillWrite(ctx, userID, "Bill marked paid: ID "+id)
	return nil
}

// BillView is a bill with its overdue flag resolved against today.
type BillView struct {
	core.Bill
	Overdue bool `json:"overdue"`
}

// ListBills returns the user's bills by due date, flagging the overdue ones.
func (s *LedgerService) ListBills(ctx context.Context, userID string, f store.BillFilter) ([]BillView, error) {
	f.UserID = userID
	bills, err := s.store.ListBills(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	today := s.opts.today()
	views := make([]BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, BillView{Bill: b, Overdue: b.Overdue(today)})
	}
	return views, nil
}

func (s *LedgerService) afterBillWrite(ctx context.Context, userID, message string) {
	s.notify(ctx, userID, message)
	s.opts.invalidate(ctx, userID)
	s.logger.InfoContext(ctx, "Bill changed", log.FieldUserID, userID, "message", message)
}

// Notifications

func (s *LedgerService) ListNotifications(ctx context.Context, userID string, limit int) ([]core.Notification, error) {
	list, err := s.store.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *LedgerService) DeleteNotification(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteNotification(ctx, userID, id); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

func (s *LedgerService) notify(ctx context.Context, userID, message string) {
	if err := addNotification(ctx, s.store, userID, message, s.opts.Now()); err != nil {
		s.logger.WithComponent(log.ComponentNotify).WarnContext(ctx, "Failed to add notification",
			log.FieldUserID, userID, log.FieldError, err)
	}
}
