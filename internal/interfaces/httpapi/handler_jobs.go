package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smuti/greydb-api/internal/usecase"
)

// QStash forwards the message id on every delivery, including retries.
const upstashMessageIDHeader = "Upstash-Message-Id"

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req usecase.ReconcileJobInput
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.DispatchID = resolveDispatchID(r, req.DispatchID, "reconcile", reconcileScopeLabel(req.LeagueProviderID))

	result, err := h.jobs.RunReconcileJob(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "run reconcile job failed",
			"dispatch_id", req.DispatchID,
			"league_id", req.LeagueProviderID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req usecase.BackfillJobInput
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.DispatchID = resolveDispatchID(r, req.DispatchID, "backfill", "all")

	result, err := h.jobs.RunBackfillJob(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "run backfill job failed", "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) IngestMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestMatch")
	defer span.End()

	if h.ingester == nil {
		writeError(ctx, w, fmt.Errorf("%w: match ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingester.IngestByProviderID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, result)
}

// resolveDispatchID prefers the body value, then the queue message id, and
// falls back to a manual id so every run leaves a dispatch record.
func resolveDispatchID(r *http.Request, fromBody, jobName, scope string) string {
	if id := strings.TrimSpace(fromBody); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get(upstashMessageIDHeader)); id != "" {
		return id
	}
	return buildManualDispatchID(jobName, scope, time.Now())
}

func buildManualDispatchID(jobName, scope string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	scope = sanitizeDispatchPart(scope)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + scope + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}

func reconcileScopeLabel(leagueProviderID int64) string {
	if leagueProviderID <= 0 {
		return "all"
	}
	return "league-" + strconv.FormatInt(leagueProviderID, 10)
}
