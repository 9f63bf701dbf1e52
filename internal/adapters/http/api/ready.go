package api

import (
	"net/http"

	"github.com/okian/puddin/internal/domain/types"
	"github.com/okian/puddin/pkg/logger"
)

// ReadyHandler reports dataset readiness and triggers refreshes.
type ReadyHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(deps Dependencies, l logger.Logger) *ReadyHandler {
	return &ReadyHandler{deps: deps, logger: l}
}

// HandleReady handles GET /readyz. It answers 503 until the first
// dataset snapshot has been published.
func (h *ReadyHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	status := h.deps.Readiness()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// HandleRefresh handles POST /datasets/refresh.
func (h *ReadyHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	status, err := h.deps.Refresh(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "dataset refresh failed",
			logger.Error(err),
		)
		// Sync failures name backend hosts; keep those in the log.
		if types.KindOf(err) == types.KindDatasetUnavailable {
			status, code := statusFor(types.KindDatasetUnavailable)
			writeError(w, status, code, ErrRefreshFailed)
			return
		}
		writeDomainError(w, err)
		return
	}
	h.logger.Info(r.Context(), "datasets refreshed",
		logger.Int("version", int(status.Version)),
	)
	writeJSON(w, http.StatusOK, status)
}
