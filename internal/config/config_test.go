package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "ARK_API_KEY", "ARK_ACCESS_KEY",
		"ARK_SECRET_KEY", "ARK_MODEL", "AI_TEMPERATURE", "AI_MAX_TOKENS",
		"STORE_DRIVER", "SUPABASE_DB_URL", "DATABASE_URL", "SQLITE_PATH",
		"STORE_AUTO_MIGRATE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.OpenAI.Model != DefaultOpenAIModel {
		t.Fatalf("unexpected openai model: %s", cfg.AI.OpenAI.Model)
	}
	if cfg.AI.Gemini.Model != DefaultGeminiModel {
		t.Fatalf("unexpected gemini model: %s", cfg.AI.Gemini.Model)
	}
	if cfg.AI.OpenAI.Enabled() || cfg.AI.Gemini.Enabled() || cfg.AI.Ark.Enabled() {
		t.Fatal("providers should be disabled without credentials")
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Fatalf("unexpected driver: %s", cfg.Store.Driver)
	}
	if cfg.Store.Configured() {
		t.Fatal("postgres store should be unconfigured without a URL")
	}
}

func TestLoadPortVariants(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}

	t.Setenv("PORT", "80 80")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for PORT containing spaces")
	}
}

func TestLoadDatabaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/helix")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Store.URL != "postgres://localhost/helix" {
		t.Fatalf("unexpected url: %s", cfg.Store.URL)
	}
	if !cfg.Store.Configured() {
		t.Fatal("store should be configured")
	}

	t.Setenv("SUPABASE_DB_URL", "postgres://supabase/db")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Store.URL != "postgres://supabase/db" {
		t.Fatalf("SUPABASE_DB_URL should win, got %s", cfg.Store.URL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":       "mongo",
		"AI_TEMPERATURE":     "warm",
		"AI_MAX_TOKENS":      "0",
		"STORE_AUTO_MIGRATE": "maybe",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestSQLiteAutoMigratesByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Fatalf("unexpected driver: %s", cfg.Store.Driver)
	}
	if !cfg.Store.AutoMigrate {
		t.Fatal("sqlite should auto-migrate by default")
	}
	if cfg.Store.SQLitePath != "helix.db" {
		t.Fatalf("unexpected sqlite path: %s", cfg.Store.SQLitePath)
	}
}

func TestArkEnabledRequiresModel(t *testing.T) {
	cfg := ArkConfig{APIKey: "key"}
	if cfg.Enabled() {
		t.Fatal("ark should require a model")
	}
	cfg.Model = "ep-123"
	if !cfg.Enabled() {
		t.Fatal("ark should be enabled with key and model")
	}
	cfg = ArkConfig{AccessKey: "ak", SecretKey: "sk", Model: "ep-123"}
	if !cfg.Enabled() {
		t.Fatal("ark should accept AK/SK")
	}
}
