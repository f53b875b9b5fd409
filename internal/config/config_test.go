package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "ALLOW_ORIGIN", "STORE_BACKEND", "SECRET_KEY", "JWT_ISSUER",
	"TOKEN_TTL", "RATE_LIMIT_REQUESTS_PER_SECOND", "RESUME_BACKEND", "RESUME_DIR",
	"RESUME_BUCKET", "MAX_RESUME_BYTES", "REQUEST_TIMEOUT", "LOG_LEVEL",
	"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE",
	"USE_CONNECTION_STR", "DB_CONNECTION_STR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_MemoryBackendFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_ORIGIN", "http://a.example, http://b.example")
	t.Setenv("TOKEN_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, Default().MaxResumeBytes, cfg.MaxResumeBytes)
	assert.Equal(t, ResumeLocal, cfg.ResumeBackend)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
secret_key: from-file
request_timeout: 3s
db:
  host: db.internal
  port: "5432"
  user: portal
  password: pw
  name: jobs
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SECRET_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                           "eighty",
		"RATE_LIMIT_REQUESTS_PER_SECOND": "0",
		"USE_CONNECTION_STR":             "maybe",
		"REQUEST_TIMEOUT":                "soon",
		"STORE_BACKEND":                  "mongo",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SECRET_KEY", "s3cret")
			t.Setenv("STORE_BACKEND", "memory")
			t.Setenv(key, value)

			_, err := Load()
			assert.True(t, errors.Is(err, errors.NotValid), "%v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.SecretKey = "s3cret"
	valid.StoreBackend = StoreMemory
	require.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.SecretKey = ""
	assert.Error(t, noSecret.Validate())

	gcsWithoutBucket := valid
	gcsWithoutBucket.ResumeBackend = ResumeGCS
	assert.Error(t, gcsWithoutBucket.Validate())

	pgIncomplete := valid
	pgIncomplete.StoreBackend = StorePostgres
	assert.Error(t, pgIncomplete.Validate())

	pgConnStr := pgIncomplete
	pgConnStr.DB.UseConstr = true
	pgConnStr.DB.Constr = "postgres://u:p@localhost/db"
	assert.NoError(t, pgConnStr.Validate())
}
