package config

import (
	"testing"
	"time"

	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/smuti/greydb-api/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadWith sets env on top of a dev baseline with every optional exporter off.
func loadWith(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()
	baseline := map[string]string{
		"APP_ENV":             EnvDev,
		"UPTRACE_ENABLED":     "false",
		"BETTERSTACK_ENABLED": "false",
		"PYROSCOPE_ENABLED":   "false",
		"QSTASH_ENABLED":      "false",
	}
	for k, v := range baseline {
		t.Setenv(k, v)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	return Load()
}

func mustLoad(t *testing.T, env map[string]string) Config {
	t.Helper()
	cfg, err := loadWith(t, env)
	require.NoError(t, err)
	return cfg
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown app env":               {"APP_ENV": "invalid"},
		"uptrace without dsn":           {"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": ""},
		"betterstack without endpoint":  {"BETTERSTACK_ENABLED": "true", "BETTERSTACK_ENDPOINT": ""},
		"pyroscope without server":      {"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""},
		"non-bool prepared binary flag": {"DB_DISABLE_PREPARED_BINARY_RESULT": "not-bool"},
		"bad cache ttl":                 {"CACHE_TTL": "bad"},
		"qstash without credentials":    {"QSTASH_ENABLED": "true", "QSTASH_TOKEN": "", "QSTASH_TARGET_BASE_URL": "", "INTERNAL_JOB_TOKEN": ""},
		"bootstrap without qstash":      {"JOB_BOOTSTRAP_ENABLED": "true"},
		"zero circuit failure count":    {"FOTMOB_CIRCUIT_FAILURE_COUNT": "0"},
		"fetch interval below window":   {"SCAN_FETCH_INTERVAL": "100ms"},
		"fetch interval above window":   {"SCAN_FETCH_INTERVAL": "2s"},
		"zero per league limit":         {"SCAN_LIMIT_PER_LEAGUE": "0"},
		"non-numeric max fixtures":      {"SCAN_MAX_FIXTURES": "many"},
		"too many backfill workers":     {"BACKFILL_MAX_WORKERS": "8"},
		"reconcile interval too short":  {"JOB_RECONCILE_INTERVAL": "30s"},
		"memory storage in prod":        {"APP_ENV": EnvProd, "STORAGE_BACKEND": StorageMemory},
		"unknown storage backend":       {"STORAGE_BACKEND": "sqlite"},
		"empty cors list":               {"CORS_ALLOWED_ORIGINS": " , "},
		"negative payload cache ttl":    {"FOTMOB_PAYLOAD_CACHE_TTL": "-1h"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadWith(t, env)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := mustLoad(t, map[string]string{
		"CACHE_ENABLED":                     "",
		"CACHE_TTL":                         "",
		"CORS_ALLOWED_ORIGINS":              "",
		"DB_DISABLE_PREPARED_BINARY_RESULT": "",
		"STORAGE_BACKEND":                   "",
		"SWAGGER_ENABLED":                   "",
	})

	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.True(t, cfg.SwaggerEnabled)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.DBDisablePreparedBinary)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)

	assert.Equal(t, "https://www.fotmob.com/api", cfg.FotmobBaseURL)
	assert.Equal(t, 20*time.Second, cfg.FotmobTimeout)
	assert.Equal(t, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}, cfg.FotmobCircuit)

	assert.Equal(t, 400*time.Millisecond, cfg.ScanFetchInterval)
	assert.Equal(t, 20, cfg.ScanLimitPerLeague)
	assert.Equal(t, 200, cfg.ScanMaxFixtures)
	assert.Equal(t, "2024/2025", cfg.IngestDefaultSeason)
	assert.Equal(t, 100, cfg.BackfillBatchSize)
	assert.Equal(t, 1, cfg.BackfillMaxWorkers)

	assert.False(t, cfg.QStashEnabled)
	assert.Equal(t, 15*time.Minute, cfg.JobReconcileInterval)
	assert.True(t, cfg.QStashCircuit.Enabled)
	assert.Equal(t, 2, cfg.QStashCircuit.HalfOpenMaxReq)
}

func TestLoad_ProdDisablesSwaggerByDefault(t *testing.T) {
	cfg := mustLoad(t, map[string]string{"APP_ENV": EnvProd, "SWAGGER_ENABLED": ""})
	assert.False(t, cfg.SwaggerEnabled)
}

func TestLoad_Observability(t *testing.T) {
	t.Run("betterstack", func(t *testing.T) {
		cfg := mustLoad(t, map[string]string{
			"BETTERSTACK_ENABLED":   "true",
			"BETTERSTACK_ENDPOINT":  "s1765114.eu-fsn-3.betterstackdata.com",
			"BETTERSTACK_TOKEN":     "token-123",
			"BETTERSTACK_TIMEOUT":   "4s",
			"BETTERSTACK_MIN_LEVEL": "warn",
		})
		assert.True(t, cfg.BetterStackEnabled)
		assert.Equal(t, "s1765114.eu-fsn-3.betterstackdata.com", cfg.BetterStackEndpoint)
		assert.Equal(t, "token-123", cfg.BetterStackToken)
		assert.Equal(t, 4*time.Second, cfg.BetterStackTimeout)
		assert.Equal(t, logging.LevelWarn, cfg.BetterStackMinLevel)
	})

	t.Run("pprof addr defaults when blank", func(t *testing.T) {
		cfg := mustLoad(t, map[string]string{"PPROF_ENABLED": "true", "PPROF_ADDR": "  "})
		assert.Equal(t, ":6060", cfg.PprofAddr)
	})

	t.Run("pyroscope app name falls back to service", func(t *testing.T) {
		cfg := mustLoad(t, map[string]string{
			"APP_SERVICE_NAME":         "greydb-api-test",
			"PYROSCOPE_ENABLED":        "true",
			"PYROSCOPE_SERVER_ADDRESS": "http://localhost:4040",
			"PYROSCOPE_APP_NAME":       "",
		})
		assert.Equal(t, "greydb-api-test", cfg.PyroscopeAppName)
	})

	t.Run("log format", func(t *testing.T) {
		cfg := mustLoad(t, map[string]string{"APP_LOG_FORMAT": "console", "APP_LOG_LEVEL": "debug"})
		assert.Equal(t, logging.FormatConsole, cfg.LogFormat)
		assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
	})
}

func TestLoad_CORSOriginsAreTrimmed(t *testing.T) {
	cfg := mustLoad(t, map[string]string{
		"CORS_ALLOWED_ORIGINS": " https://a.example.com, http://localhost:5173 ",
	})
	assert.Equal(t, []string{"https://a.example.com", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoad_QStashEnabled(t *testing.T) {
	cfg := mustLoad(t, map[string]string{
		"QSTASH_ENABLED":         "true",
		"QSTASH_TOKEN":           "qstash-token",
		"QSTASH_TARGET_BASE_URL": "https://greydb.fly.dev",
		"INTERNAL_JOB_TOKEN":     "internal-job-token",
		"QSTASH_RETRIES":         "2",
		"JOB_BOOTSTRAP_ENABLED":  "true",
	})
	assert.True(t, cfg.QStashEnabled)
	assert.True(t, cfg.JobBootstrapEnabled)
	assert.Equal(t, 2, cfg.QStashRetries)
	assert.Equal(t, "internal-job-token", cfg.InternalJobToken)
}

func TestLoad_FotmobCircuitOverrides(t *testing.T) {
	cfg := mustLoad(t, map[string]string{
		"FOTMOB_CIRCUIT_ENABLED":       "false",
		"FOTMOB_CIRCUIT_FAILURE_COUNT": "3",
		"FOTMOB_CIRCUIT_OPEN_TIMEOUT":  "1m",
	})
	assert.False(t, cfg.FotmobCircuit.Enabled)
	assert.Equal(t, 3, cfg.FotmobCircuit.FailureThreshold)
	assert.Equal(t, time.Minute, cfg.FotmobCircuit.OpenTimeout)
}

func TestLoad_PayloadCache(t *testing.T) {
	cfg := mustLoad(t, map[string]string{"REDIS_URL": "", "FOTMOB_PAYLOAD_CACHE_TTL": ""})
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "greydb", cfg.RedisKeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.PayloadCacheTTL)

	cfg = mustLoad(t, map[string]string{"REDIS_URL": " redis://localhost:6379/0 ", "FOTMOB_PAYLOAD_CACHE_TTL": "6h"})
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 6*time.Hour, cfg.PayloadCacheTTL)
}

func TestLoad_IdleConnsCappedByOpenConns(t *testing.T) {
	cfg := mustLoad(t, map[string]string{"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "8"})
	assert.Equal(t, 2, cfg.DBMaxIdleConns)
}

func TestLoad_MemoryStorageOutsideProd(t *testing.T) {
	cfg := mustLoad(t, map[string]string{"APP_ENV": EnvStage, "STORAGE_BACKEND": " Memory "})
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
}
