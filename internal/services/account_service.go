package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ledger/internal/auth"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/store"
)

var ErrSameEmail = errors.New("new email must differ from the current one")

// AccountService handles sign-in, registration and account settings.
type AccountService struct {
	store  store.Store
	tokens *auth.Tokens
	opts   Options
	logger *log.Logger
}

func NewAccountService(s store.Store, tokens *auth.Tokens, opts Options) *AccountService {
	opts = opts.withDefaults()
	return &AccountService{store: s, tokens: tokens, opts: opts, logger: opts.logger(log.ComponentAccount)}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Session is an issued bearer token and the user it belongs to.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      core.User `json:"user"`
}

// Authenticate signs in or registers depending on mode.
func (s *AccountService) Authenticate(ctx context.Context, mode auth.Mode, c Credentials) (Session, error) {
	if mode == auth.ModeRegister {
		return s.Register(ctx, c)
	}
	return s.Login(ctx, c)
}

func (s *AccountService) Register(ctx context.Context, c Credentials) (Session, error) {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(c.Password)
	if errors.Is(err, core.ErrPasswordTooWeak) {
		return Session{}, invalid(err)
	}
	if err != nil {
		return Session{}, err
	}

	u := core.User{
		ID:           core.NewID(),
		Email:        email,
		Username:     strings.TrimSpace(c.Username),
		PasswordHash: hash,
		CreatedAt:    s.opts.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID)
	return s.issue(u)
}

// Login returns auth.ErrInvalidCredentials for an unknown email or a wrong password.
func (s *AccountService) Login(ctx context.Context, c Credentials) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, c.Password); err != nil {
		s.logger.WithComponent(log.ComponentAuth).WarnContext(ctx, "Login failed", log.FieldUserID, u.ID)
		return Session{}, err
	}
	return s.issue(u)
}

func (s *AccountService) issue(u core.User) (Session, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AccountService) User(ctx context.Context, userID string) (core.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// ChangePassword requires the current password before storing the new hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(u.PasswordHash, current); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if errors.Is(err, core.ErrPasswordTooWeak) {
		return invalid(err)
	}
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.InfoContext(ctx, "Password changed", log.FieldUserID, userID)
	return nil
}

// ChangeEmail stores a new unique email. store.ErrConflict means it is taken.
func (s *AccountService) ChangeEmail(ctx context.Context, userID, email string) (core.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return core.User{}, err
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if u.Email == email {
		return core.User{}, invalid(ErrSameEmail)
	}
	if err := s.store.UpdateEmail(ctx, userID, email); err != nil {
		return core.User{}, fmt.Errorf("update email: %w", err)
	}
	u.Email = email
	s.logger.InfoContext(ctx, "Email changed", log.FieldUserID, userID)
	return u, nil
}

// ClearData removes transactions, bills and notifications. Budgets are kept.
func (s *AccountService) ClearData(ctx context.Context, userID string) error {
	if err := s.store.ClearUserData(ctx, userID); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	s.opts.invalidate(ctx, userID)
	s.logger.InfoContext(ctx, "User data cleared", log.FieldUserID, userID)
	return nil
}

// DeleteAccount removes the user and everything they own.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.opts.invalidate(ctx, userID)
	s.logger.InfoContext(ctx, "Account deleted", log.FieldUserID, userID)
	return nil
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", invalid(core.ErrInvalidEmail)
	}
	return s, nil
}
