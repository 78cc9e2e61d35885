package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Test with default values
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
	}

	if cfg.TranslateModel != "gpt-4.1" {
		t.Errorf("expected default TranslateModel=gpt-4.1, got %s", cfg.TranslateModel)
	}

	if cfg.SiteTitle == "" {
		t.Error("expected a default SiteTitle")
	}
}

func TestLoadWithEnv(t *testing.T) {
	// Test with environment variables
	_ = os.Setenv("LEXICON_DATABASE_URL", "postgres://ro@example/stephanos")
	_ = os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		_ = os.Unsetenv("LEXICON_DATABASE_URL")
		_ = os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LexiconDatabaseURL != "postgres://ro@example/stephanos" {
		t.Errorf("expected LexiconDatabaseURL override, got %s", cfg.LexiconDatabaseURL)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}
}

func TestResolveOpenAIKeyFromEnv(t *testing.T) {
	_ = os.Setenv("OPENAI_API_KEY", "sk-test")
	defer func() { _ = os.Unsetenv("OPENAI_API_KEY") }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	key, err := cfg.ResolveOpenAIKey()
	if err != nil {
		t.Fatalf("ResolveOpenAIKey() failed: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("expected sk-test, got %s", key)
	}
}
