package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Async.Workers)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, DefaultPlaceholderImageURL, cfg.Maintenance.PlaceholderImageURL)
	assert.True(t, cfg.Database.Migrate)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "moodflix.yaml")
	yaml := `
database:
  url: postgres://file/db
server:
  addr: 0.0.0.0:9000
auth:
  jwt_secret: from-file
  token_ttl: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("MOODFLIX_AUTH__JWT_SECRET", "from-env")
	t.Setenv("MOODFLIX_ASYNC__WORKERS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Async.Workers)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://plain/db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://plain/db", cfg.Database.URL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(".env", []byte("MOODFLIX_LOGGING__LEVEL=debug\n"), 0o600))
	// godotenv sets the variable for the process; make sure it is undone.
	t.Setenv("MOODFLIX_LOGGING__LEVEL", "")
	require.NoError(t, os.Unsetenv("MOODFLIX_LOGGING__LEVEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "s" },
			wantErr: ErrMissingDatabaseURL,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Database.URL = "postgres://x" },
			wantErr: ErrMissingJWTSecret,
		},
		{
			name: "valid",
			mutate: func(c *Config) {
				c.Database.URL = "postgres://x"
				c.Auth.JWTSecret = "s"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "auth.jwt_secret", envKey("MOODFLIX_AUTH__JWT_SECRET"))
	assert.Equal(t, "database.max_conns", envKey("MOODFLIX_DATABASE__MAX_CONNS"))
}

// chdir mirrors testing.T.Chdir (Go 1.24+): change the working directory for
// the duration of the test and restore it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
