package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"host": "localhost", "user": "vault", "dbname": "vault"},
		"jwt_secret": "secret",
		"port": 8080,
		"share": {"base_url": "https://vault.example.com/"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, 72, cfg.JWTTTLHours)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, "https://vault.example.com", cfg.Share.BaseURL)
	require.Equal(t, DefaultMaxExpiresInMinutes, cfg.Share.MaxExpiresInMinutes)
	require.Equal(t, "", cfg.FileStore.Type)
}

func TestLoadRequiresFields(t *testing.T) {
	cases := map[string]string{
		"database":   `{"jwt_secret":"s","port":1,"share":{"base_url":"http://x"}}`,
		"jwt secret": `{"database":{"dsn":"postgres://x"},"port":1,"share":{"base_url":"http://x"}}`,
		"port":       `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","share":{"base_url":"http://x"}}`,
		"base url":   `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","port":1}`,
		"file store": `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","port":1,"share":{"base_url":"http://x"},"file_store":{"type":"ftp"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsOversizedExpiryBound(t *testing.T) {
	_, err := Load(writeConfig(t, `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","port":1,"share":{"base_url":"http://x","max_expires_in_minutes":200000000}}`))
	require.Error(t, err)

	cfg, err := Load(writeConfig(t, `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","port":1,"share":{"base_url":"http://x","max_expires_in_minutes":52560000}}`))
	require.NoError(t, err)
	require.Equal(t, MaxExpiresInMinutes, cfg.Share.MaxExpiresInMinutes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DOCVAULT_JWT_SECRET", "from-env")
	t.Setenv("DOCVAULT_PORT", "9090")
	t.Setenv("DOCVAULT_DB_DSN", "postgres://env")

	cfg, err := Load(writeConfig(t, `{"jwt_secret":"file","port":1,"share":{"base_url":"http://x"}}`))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.JWTSecret)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "postgres://env", cfg.Database.DSN)
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DOCVAULT_SHARE_BASE_URL=http://from-dotenv\n"), 0o600))
	t.Setenv("DOCVAULT_SHARE_BASE_URL", "")
	require.NoError(t, os.Unsetenv("DOCVAULT_SHARE_BASE_URL"))

	require.NoError(t, LoadEnvFile(envPath))
	cfg, err := Load(writeConfig(t, `{"database":{"dsn":"postgres://x"},"jwt_secret":"s","port":1}`))
	require.NoError(t, err)
	require.Equal(t, "http://from-dotenv", cfg.Share.BaseURL)
	require.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadFileStoreAndTracingDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"database": {"dsn": "postgres://x"},
		"jwt_secret": "s",
		"port": 1,
		"share": {"base_url": "http://x"},
		"file_store": {"type": " S3 ", "data": {"bucket": "b"}},
		"cache": {"company_size": 128},
		"tracing": {"enabled": true}
	}`))
	require.NoError(t, err)
	require.Equal(t, "s3", cfg.FileStore.Type)
	require.Equal(t, 60, cfg.FileStore.URLTTLMinutes)
	require.Equal(t, 60, cfg.Cache.CompanyTTLSeconds)
	require.Equal(t, "docvault", cfg.Tracing.ServiceName)
	require.Equal(t, "grpc", cfg.Tracing.Protocol)
	require.Equal(t, float64(1), cfg.Tracing.SampleRatio)
}
