package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/smuti/greydb-api/internal/config"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intake records what a fake Better Stack ingestion endpoint received.
type intake struct {
	mu      sync.Mutex
	auth    []string
	batches [][]map[string]any
}

func newIntake(t *testing.T) (*intake, *httptest.Server) {
	t.Helper()
	in := &intake{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var batch []map[string]any
		if err := sonic.Unmarshal(raw, &batch); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		in.mu.Lock()
		in.auth = append(in.auth, r.Header.Get("Authorization"))
		in.batches = append(in.batches, batch)
		in.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)
	return in, srv
}

func (in *intake) records() []map[string]any {
	in.mu.Lock()
	defer in.mu.Unlock()
	var out []map[string]any
	for _, batch := range in.batches {
		out = append(out, batch...)
	}
	return out
}

func shipperConfig(endpoint, token string, minLevel logging.Level) config.Config {
	return config.Config{
		AppEnv:              config.EnvStage,
		ServiceName:         "greydb-ingest",
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    token,
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: minLevel,
	}
}

func drain(t *testing.T, shutdown func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
}

func TestInitBetterStackLogger_ShipsRecordsAtOrAboveMinLevel(t *testing.T) {
	t.Parallel()

	in, srv := newIntake(t)
	logger, shutdown, err := InitBetterStackLogger(shipperConfig(srv.URL, "ingest-token", logging.LevelWarn), logging.NewNop())
	require.NoError(t, err)

	logger.InfoContext(context.Background(), "fixture reconciled", "fixture_id", int64(1))
	logger.WarnContext(context.Background(), "provider rate limited", "match_id", int64(4506393))
	logger.ErrorContext(context.Background(), "mark processed failed", "fixture_id", int64(2))
	drain(t, shutdown)

	records := in.records()
	require.Len(t, records, 2)
	assert.Equal(t, "provider rate limited", records[0]["message"])
	assert.Equal(t, "warn", records[0]["level"])
	assert.Equal(t, "greydb-ingest", records[0]["service"])
	assert.Equal(t, config.EnvStage, records[0]["environment"])
	assert.Equal(t, float64(4506393), records[0]["match_id"])
	assert.Equal(t, "mark processed failed", records[1]["message"])

	in.mu.Lock()
	defer in.mu.Unlock()
	for _, auth := range in.auth {
		assert.Equal(t, "Bearer ingest-token", auth)
	}
}

func TestInitBetterStackLogger_QuietBelowMinLevel(t *testing.T) {
	t.Parallel()

	in, srv := newIntake(t)
	logger, shutdown, err := InitBetterStackLogger(shipperConfig(srv.URL, "", logging.LevelError), logging.NewNop())
	require.NoError(t, err)

	logger.WarnContext(context.Background(), "scan cap reached")
	drain(t, shutdown)

	assert.Empty(t, in.records())
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                           "",
		"in.logs.betterstack.com":    "https://in.logs.betterstack.com",
		" http://localhost:9000 ":    "http://localhost:9000",
		"https://in.logs.example.io": "https://in.logs.example.io",
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalizeBetterStackEndpoint(raw), "endpoint %q", raw)
	}
}

func TestBetterStackShipper_BatchesRecords(t *testing.T) {
	t.Parallel()

	in, srv := newIntake(t)
	shipper := newBetterStackShipper(betterStackShipperConfig{
		Endpoint:   srv.URL,
		BatchSize:  2,
		FlushEvery: time.Hour,
	})
	for _, record := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}` + "\n", "  \n"} {
		_, err := shipper.Write([]byte(record))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, shipper.Close(ctx))

	_, err := shipper.Write([]byte(`{"n":4}`))
	require.NoError(t, err, "writes after close are dropped, not failed")

	in.mu.Lock()
	defer in.mu.Unlock()
	require.Len(t, in.batches, 2)
	assert.Len(t, in.batches[0], 2)
	assert.Len(t, in.batches[1], 1)
}
