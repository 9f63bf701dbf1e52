package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/puddin/internal/app"
	"github.com/okian/puddin/internal/domain/model"
	"github.com/okian/puddin/internal/domain/narrative"
	"github.com/okian/puddin/pkg/logger"
)

// maxPredictBody bounds the request body; a request is four short strings.
const maxPredictBody = 64 << 10

// predictRequest mirrors the OpenAPI schema for POST /predict. Either
// team_a and team_b or teams is set.
type predictRequest struct {
	Sport string `json:"sport"`
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
	Teams string `json:"teams"`
}

type predictResponse struct {
	narrative.Lines
	Prediction model.Outcome `json:"prediction"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps     Dependencies
	narrator *narrative.Narrator
	logger   logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, n *narrative.Narrator, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, narrator: n, logger: l}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.Predict(r.Context(), service.Request{
		Sport: req.Sport,
		TeamA: req.TeamA,
		TeamB: req.TeamB,
		Teams: req.Teams,
	})
	if err != nil {
		status, code := writeDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "prediction failed",
				logger.String("code", code),
				logger.Error(err),
			)
		}
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Lines: h.narrator.Render(out), Prediction: out})
}
