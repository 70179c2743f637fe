package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smuti/greydb-api/internal/platform/resilience"
	"github.com/smuti/greydb-api/internal/usecase"
)

const readinessTimeout = 3 * time.Second

type readinessDTO struct {
	Status   string               `json:"status"`
	Checks   map[string]string    `json:"checks"`
	Provider *resilience.Snapshot `json:"provider,omitempty"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz runs every dependency probe. An open provider circuit is reported but
// does not fail readiness.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	probeCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	out := readinessDTO{Status: "ok", Checks: make(map[string]string, len(h.readiness))}
	var failed []string
	for _, probe := range h.readiness {
		if probe.Check == nil {
			continue
		}
		if err := probe.Check(probeCtx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "check", probe.Name, "error", err)
			out.Checks[probe.Name] = err.Error()
			failed = append(failed, probe.Name)
			continue
		}
		out.Checks[probe.Name] = "ok"
	}
	if h.provider != nil {
		snapshot := h.provider.BreakerSnapshot()
		out.Provider = &snapshot
	}

	if len(failed) > 0 {
		writeError(ctx, w, fmt.Errorf("%w: readiness failed for %s", usecase.ErrDependencyUnavailable, strings.Join(failed, ",")))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
