package auth

import (
	"fmt"
	"strings"
)

// Mode selects whether an auth request signs in or creates an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Toggle switches between login and register.
func (m Mode) Toggle() Mode {
	if m == ModeRegister {
		return ModeLogin
	}
	return ModeRegister
}

// ParseMode accepts "login" and "register". An empty string means login.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "login":
		return ModeLogin, nil
	case "register", "signup":
		return ModeRegister, nil
	}
	return ModeLogin, fmt.Errorf("unknown auth mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
