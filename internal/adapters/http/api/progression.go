// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/stitchsocial/clout/internal/domain/progression"
)

// ProgressionDependencies defines the interface for progression reads.
type ProgressionDependencies interface {
	Progression(ctx context.Context, creatorID string) (progression.GlobalState, []int, error)
}

// ProgressionHandler serves a creator's derived global progression.
type ProgressionHandler struct {
	deps ProgressionDependencies
}

// NewProgressionHandler creates a new progression handler.
func NewProgressionHandler(deps ProgressionDependencies) *ProgressionHandler {
	return &ProgressionHandler{deps: deps}
}

// progressionResponse mirrors the OpenAPI schema for GET /progression/{creator_id}.
type progressionResponse struct {
	CreatorID         string `json:"creator_id"`
	TotalGlobalXP     int64  `json:"total_global_xp"`
	GlobalLevel       int    `json:"global_level"`
	TapMultiplier     int    `json:"tap_multiplier_bonus"`
	CloutBonus        int64  `json:"permanent_clout_bonus"`
	CommunitiesActive int    `json:"communities_active"`
	Milestones        []int  `json:"milestones_awarded"`
}

// HandleGetProgression handles GET /progression/{creator_id} requests.
func (h *ProgressionHandler) HandleGetProgression(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/progression/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	state, milestones, err := h.deps.Progression(r.Context(), path)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if milestones == nil {
		milestones = []int{}
	}
	writeJSON(w, http.StatusOK, progressionResponse{
		CreatorID:         path,
		TotalGlobalXP:     state.TotalGlobalXP,
		GlobalLevel:       state.GlobalLevel,
		TapMultiplier:     state.TapMultiplierBonus,
		CloutBonus:        state.PermanentCloutBonus,
		CommunitiesActive: state.CommunitiesActive,
		Milestones:        milestones,
	})
}
