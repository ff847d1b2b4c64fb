package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"postgres", &config.Config{DataBackend: "postgres", DatabaseURL: "postgres://x"}, PostgresBackend, false},
		{"sheets is no longer a store", &config.Config{DataBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should fail")
	}
	if err := (Config{Type: PostgresBackend}).Validate(); err == nil {
		t.Error("postgres without url should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory should validate: %v", err)
	}
}

func TestConfig_ValidateListsBackendTypes(t *testing.T) {
	err := (Config{Type: "sheets"}).Validate()
	if err == nil {
		t.Fatal("unknown backend should fail")
	}
	if !strings.Contains(err.Error(), "[memory sqlite postgres]") {
		t.Errorf("error %q should list the valid backends", err)
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if res.Store == nil || res.Cleanup != nil {
		t.Errorf("memory backend result = %+v", res)
	}

	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "l.db")})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if err := res.Store.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
