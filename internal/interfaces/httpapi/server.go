package httpapi

import (
	"net/http"

	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

// NewRouter mounts every route and wraps the mux outermost-first in tracing,
// access logging, CORS and panic recovery.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, swaggerEnabled)
	registerMatchDataRoutes(mux, handler)
	registerTeamRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	var root http.Handler = mux
	root = recoverPanic(logger, root)
	root = CORS(corsAllowedOrigins, root)
	root = RequestLogging(logger, root)
	return RequestTracing(root)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var catcher panics.Catcher
		catcher.Try(func() { next.ServeHTTP(w, r) })

		if recovered := catcher.Recovered(); recovered != nil {
			logger.ErrorContext(r.Context(), "panic recovered",
				"panic", recovered.Value,
				"path", r.URL.Path,
				"stack", string(recovered.Stack),
			)
			writeInternalError(r.Context(), w)
		}
	})
}
