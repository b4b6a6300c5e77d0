package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, cfg.Auth.JWTExpireMinute)
	require.Equal(t, "openai/gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 1000, cfg.LLM.MaxTokens)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRE_MINUTE", "15")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("MYSQL_DB", "chat_test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, 15, cfg.Auth.JWTExpireMinute)
	require.Equal(t, "sk-env", cfg.LLM.APIKey)
	require.Contains(t, cfg.MySQLDSN(), "/chat_test?")
}

func TestBadIntEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("JWT_EXPIRE_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, cfg.Auth.JWTExpireMinute)
}
