// Package memory is an in-process store used for tests and the default backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"ledger/internal/core"
	"ledger/internal/store"
)

type budgetKey struct {
	userID string
	period core.Period
}

type Store struct {
	mu            sync.RWMutex
	transactions  map[string]core.Transaction
	bills         map[string]core.Bill
	budgets       map[budgetKey]core.Budget
	notifications map[string]core.Notification
	users         map[string]core.User
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions:  make(map[string]core.Transaction),
		bills:         make(map[string]core.Bill),
		budgets:       make(map[budgetKey]core.Budget),
		notifications: make(map[string]core.Notification),
		users:         make(map[string]core.User),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// Transactions

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[t.ID]; exists {
		return store.ErrConflict
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return store.ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	f.Sort(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Bills

func (s *Store) CreateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bills[b.ID]; exists {
		return store.ErrConflict
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.bills[b.ID]
	if !ok || old.UserID != b.UserID {
		return store.ErrNotFound
	}
	b.CreatedAt = old.CreatedAt
	s.bills[b.ID] = b
	return nil
}

func (s *Store) DeleteBill(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

func (s *Store) GetBill(_ context.Context, userID, id string) (core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return core.Bill{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) MarkBillPaid(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return store.ErrNotFound
	}
	b.IsPaid = true
	s.bills[id] = b
	return nil
}

func (s *Store) ListBills(_ context.Context, f store.BillFilter) ([]core.Bill, error) {
	s.mu.RLock()
	out := make([]core.Bill, 0)
	for _, b := range s.bills {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()
	store.SortBills(out)
	return out, nil
}

func (s *Store) ListUnpaidDueBefore(ctx context.Context, date core.Date) ([]core.Bill, error) {
	return s.ListBills(ctx, store.BillFilter{To: date, UnpaidOnly: true})
}

// Budgets

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budgetKey{b.UserID, b.Period}] = b
	return nil
}

func (s *Store) GetBudget(_ context.Context, userID string, p core.Period) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetKey{userID, p}]
	if !ok {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

// Notifications

func (s *Store) AddNotification(_ context.Context, n core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[n.ID]; exists {
		return store.ErrConflict
	}
	s.notifications[n.ID] = n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]core.Notification, error) {
	s.mu.RLock()
	out := make([]core.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteNotification(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return store.ErrConflict
	}
	for _, other := range s.users {
		if other.Email == u.Email {
			return store.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) UpdateEmail(_ context.Context, id, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Email == email {
			return store.ErrConflict
		}
	}
	u.Email = email
	s.users[id] = u
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	s.clearLocked(id)
	for k := range s.budgets {
		if k.userID == id {
			delete(s.budgets, k)
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ClearUserData(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(userID)
	return nil
}

func (s *Store) clearLocked(userID string) {
	for id, t := range s.transactions {
		if t.UserID == userID {
			delete(s.transactions, id)
		}
	}
	for id, b := range s.bills {
		if b.UserID == userID {
			delete(s.bills, id)
		}
	}
	for id, n := range s.notifications {
		if n.UserID == userID {
			delete(s.notifications, id)
		}
	}
}
