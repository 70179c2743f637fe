package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smuti/greydb-api/internal/config"
	"github.com/smuti/greydb-api/internal/platform/logging"
)

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil || srv != nil {
		t.Fatalf("expected nil server when disabled: srv=%v err=%v", srv, err)
	}
	if err := StopPprofServer(nil, nil, time.Second); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}

func TestPprofHandler_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	pprofHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	pprofHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown path: %d", rec.Code)
	}
}

func TestPyroscopeConfig_FallsBackToServiceName(t *testing.T) {
	got := pyroscopeConfig(config.Config{
		ServiceName:    "greydb-api",
		ServiceVersion: "1.4.0",
		AppEnv:         config.EnvProd,
		StorageBackend: config.StoragePostgres,
	})
	if got.ApplicationName != "greydb-api" {
		t.Fatalf("unexpected application name: %q", got.ApplicationName)
	}
	if got.Tags["env"] != config.EnvProd || got.Tags["storage"] != config.StoragePostgres {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
}
