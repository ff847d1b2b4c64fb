// Package sqlstore implements store.Store on database/sql for sqlite and postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ledger/internal/core"
	"ledger/internal/store"
)

type Store struct {
	db *sql.DB
	d  dialect
}

var _ store.Store = (*Store)(nil)

// NewSQLite opens (creating if needed) a sqlite database file and migrates it.
func NewSQLite(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	s, err := open(sqliteDialect, dsn)
	if err != nil {
		return nil, err
	}
	// One writer avoids SQLITE_BUSY under concurrent requests.
	s.db.SetMaxOpenConns(1)
	return s, nil
}

// NewPostgres connects through the pgx stdlib driver and migrates the schema.
func NewPostgres(databaseURL string) (*Store, error) {
	return open(postgresDialect, databaseURL)
}

func open(d dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.name, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, d: d}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.rebind(query), args...)
}

// execOne runs a write that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) insertErr(what string, err error) error {
	if s.d.isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

type scanner interface {
	Scan(dest ...any) error
}

// Transactions

const transactionColumns = "id, user_id, type, category, item, amount_cents, date, created_at"

func scanTransaction(sc scanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		typ     string
		cents   int64
		date    dateValue
		created timeValue
	)
	if err := sc.Scan(&t.ID, &t.UserID, &typ, &t.Category, &t.Item, &cents, &date, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Cents(cents)
	t.Date = date.Date
	t.CreatedAt = created.Time
	return t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := s.exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Category, t.Item, t.Amount.Cents, s.d.dateArg(t.Date), s.d.timeArg(t.CreatedAt))
	if err != nil {
		return s.insertErr("create transaction", err)
	}
	slog.DebugContext(ctx, "Transaction saved to database", "id", t.ID, "amount_cents", t.Amount.Cents, "backend", s.d.name)
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	err := s.execOne(ctx,
		`UPDATE transactions SET type = ?, category = ?, item = ?, amount_cents = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Category, t.Item, t.Amount.Cents, s.d.dateArg(t.Date), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`), id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, s.d.dateArg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, s.d.dateArg(f.To))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		where = append(where, `LOWER(category) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Category))
	}
	if f.Item != "" {
		where = append(where, `LOWER(item) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Item))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Order == store.OldestFirst {
		query += " ORDER BY date ASC, created_at ASC"
	} else {
		query += " ORDER BY date DESC, created_at DESC"
	}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Bills

const billColumns = "id, user_id, name, amount_cents, due_date, is_paid, created_at"

func scanBill(sc scanner) (core.Bill, error) {
	var (
		b       core.Bill
		cents   int64
		due     dateValue
		created timeValue
	)
	if err := sc.Scan(&b.ID, &b.UserID, &b.Name, &cents, &due, &b.IsPaid, &created); err != nil {
		return core.Bill{}, err
	}
	b.Amount = core.Cents(cents)
	b.DueDate = due.Date
	b.CreatedAt = created.Time
	return b, nil
}

func (s *Store) CreateBill(ctx context.Context, b core.Bill) error {
	_, err := s.exec(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.Amount.Cents, s.d.dateArg(b.DueDate), b.IsPaid, s.d.timeArg(b.CreatedAt))
	if err != nil {
		return s.insertErr("create bill", err)
	}
	return nil
}

func (s *Store) UpdateBill(ctx context.Context, b core.Bill) error {
	err := s.execOne(ctx,
		`UPDATE bills SET name = ?, amount_cents = ?, due_date = ?, is_paid = ? WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount.Cents, s.d.dateArg(b.DueDate), b.IsPaid, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update bill %s: %w", b.ID, err)
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, userID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM bills WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, userID, id string) (core.Bill, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`), id, userID)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, store.ErrNotFound
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %s: %w", id, err)
	}
	return b, nil
}

func (s *Store) MarkBillPaid(ctx context.Context, userID, id string) error {
	if err := s.execOne(ctx, `UPDATE bills SET is_paid = ? WHERE id = ? AND user_id = ?`, true, id, userID); err != nil {
		return fmt.Errorf("mark bill %s paid: %w", id, err)
	}
	return nil
}

func (s *Store) ListBills(ctx context.Context, f store.BillFilter) ([]core.Bill, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		where = append(where, "due_date >= ?")
		args = append(args, s.d.dateArg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "due_date <= ?")
		args = append(args, s.d.dateArg(f.To))
	}
	if f.UnpaidOnly {
		where = append(where, "is_paid = ?")
		args = append(args, false)
	}

	query := `SELECT ` + billColumns + ` FROM bills`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	out := make([]core.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListUnpaidDueBefore(ctx context.Context, date core.Date) ([]core.Bill, error) {
	return s.ListBills(ctx, store.BillFilter{To: date, UnpaidOnly: true})
}

// Budgets

func (s *Store) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := s.exec(ctx,
		`INSERT INTO budgets (user_id, budget_period, amount_cents, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, budget_period)
		 DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at`,
		b.UserID, b.Period.String(), b.Amount.Cents, s.d.timeArg(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert budget %s: %w", b.Period, err)
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, userID string, p core.Period) (core.Budget, error) {
	var (
		period  string
		cents   int64
		updated timeValue
	)
	err := s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT budget_period, amount_cents, updated_at FROM budgets WHERE user_id = ? AND budget_period = ?`),
		userID, p.String()).Scan(&period, &cents, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", p, err)
	}
	parsed, err := core.ParsePeriod(period)
	if err != nil {
		return core.Budget{}, fmt.Errorf("stored budget period %q: %w", period, err)
	}
	return core.Budget{UserID: userID, Period: parsed, Amount: core.Cents(cents), UpdatedAt: updated.Time}, nil
}

// Notifications

func (s *Store) AddNotification(ctx context.Context, n core.Notification) error {
	_, err := s.exec(ctx,
		`INSERT INTO notifications (id, user_id, message, created_at) VALUES (?, ?, ?, ?)`,
		n.ID, n.UserID, n.Message, s.d.timeArg(n.CreatedAt))
	if err != nil {
		return s.insertErr("add notification", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]core.Notification, error) {
	query := `SELECT id, user_id, message, created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]core.Notification, 0)
	for rows.Next() {
		var (
			n       core.Notification
			created timeValue
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &created); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = created.Time
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

// Users

func scanUser(sc scanner) (core.User, error) {
	var (
		u       core.User
		created timeValue
	)
	if err := sc.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = created.Time
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	_, err := s.exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, s.d.timeArg(u.CreatedAt))
	if err != nil {
		return s.insertErr("create user", err)
	}
	return nil
}

func (s *Store) getUserWhere(ctx context.Context, cond string, arg any) (core.User, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind(
		`SELECT id, email, username, password_hash, created_at FROM users WHERE `+cond+` = ?`), arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	return s.getUserWhere(ctx, "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.getUserWhere(ctx, "email", email)
}

func (s *Store) UpdateEmail(ctx context.Context, id, email string) error {
	err := s.execOne(ctx, `UPDATE users SET email = ? WHERE id = ?`, email, id)
	if err != nil {
		if s.d.isUniqueViolation(err) {
			return fmt.Errorf("update email: %w", store.ErrConflict)
		}
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := s.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Store) ClearUserData(ctx context.Context, userID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.deleteOwned(ctx, tx, userID, "transactions", "bills", "notifications")
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.deleteOwned(ctx, tx, id, "transactions", "bills", "notifications", "budgets"); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, s.d.rebind(`DELETE FROM users WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) deleteOwned(ctx context.Context, tx *sql.Tx, userID string, tables ...string) error {
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, s.d.rebind(`DELETE FROM `+table+` WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
