package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/smuti/greydb-api/internal/domain/fixture"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/smuti/greydb-api/internal/platform/resilience"
	"github.com/smuti/greydb-api/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type MatchDataService interface {
	ListUnprocessed(ctx context.Context, leagueProviderID int64, limit int) ([]fixture.Fixture, error)
	Summary(ctx context.Context) (usecase.MatchDataSummary, error)
	CheckFinished(ctx context.Context, providerMatchIDs []int64) ([]usecase.CheckedMatch, error)
}

type TeamFormReader interface {
	Form(ctx context.Context, input usecase.TeamFormInput) (usecase.TeamForm, error)
	HeadToHead(ctx context.Context, input usecase.HeadToHeadInput) (usecase.HeadToHead, error)
}

type JobRunner interface {
	RunReconcileJob(ctx context.Context, input usecase.ReconcileJobInput) (usecase.ReconcileJobResult, error)
	RunBackfillJob(ctx context.Context, input usecase.BackfillJobInput) (usecase.BackfillResult, error)
}

type MatchIngester interface {
	IngestByProviderID(ctx context.Context, providerMatchID int64) (usecase.IngestResult, error)
}

// BreakerReporter exposes the provider circuit breaker for readiness output.
type BreakerReporter interface {
	BreakerSnapshot() resilience.Snapshot
}

// ReadinessCheck is one named dependency probe run by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	matchData MatchDataService
	teamForm  TeamFormReader
	jobs      JobRunner
	ingester  MatchIngester
	provider  BreakerReporter
	readiness []ReadinessCheck
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	matchData MatchDataService,
	teamForm TeamFormReader,
	jobs JobRunner,
	ingester MatchIngester,
	provider BreakerReporter,
	readiness []ReadinessCheck,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchData: matchData,
		teamForm:  teamForm,
		jobs:      jobs,
		ingester:  ingester,
		provider:  provider,
		readiness: readiness,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody decodes a strict JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) > maxRequestBodyBytes {
		return fmt.Errorf("%w: request body exceeds %d bytes", usecase.ErrInvalidInput, maxRequestBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := strictJSON.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	value, err := queryInt64(r, name)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
