package api

import (
	"net/http"

	"github.com/okian/puddin/internal/domain/sport"
)

// SportsHandler lists the supported sports.
type SportsHandler struct {
	deps Dependencies
}

// NewSportsHandler creates a new sports handler.
func NewSportsHandler(deps Dependencies) *SportsHandler {
	return &SportsHandler{deps: deps}
}

type sportsResponse struct {
	Sports []sport.Definition `json:"sports"`
}

// HandleSports handles GET /sports requests.
func (h *SportsHandler) HandleSports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sportsResponse{Sports: h.deps.Sports()})
}
