// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stitchsocial/clout/internal/adapters/repository"
	"github.com/stitchsocial/clout/internal/domain/dedupe"
	"github.com/stitchsocial/clout/internal/domain/matching"
	"github.com/stitchsocial/clout/internal/domain/model"
	"github.com/stitchsocial/clout/internal/domain/progression"
	"github.com/stitchsocial/clout/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an XP event for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.XPEvent) bool

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, creatorID string) (Entry, error)

	// Progression returns the derived global state and awarded milestones
	// for a creator.
	Progression(ctx context.Context, creatorID string) (progression.GlobalState, []int, error)

	// MatchScore computes the opportunity match score for a creator against
	// a campaign's requirements.
	MatchScore(req matching.CampaignRequirements, m matching.CreatorMetrics) int
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	progressionHandler *ProgressionHandler
	matchHandler       *MatchHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		progressionHandler: NewProgressionHandler(deps),
		matchHandler:       NewMatchHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/progression/", MetricsMiddleware(s.progressionHandler.HandleGetProgression, "progression"))
	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandlePostMatch, "match"))
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	EventID     string `json:"event_id"`
	CreatorID   string `json:"creator_id"`
	CommunityID string `json:"community_id"`
	Amount      int64  `json:"amount"`
	TS          string `json:"ts"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.CreatorID) == "":
		return errors.New("missing creator_id")
	case strings.TrimSpace(e.CommunityID) == "":
		return errors.New("missing community_id")
	case strings.TrimSpace(e.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (e eventRequest) toModel() model.XPEvent {
	ts, _ := time.Parse(time.RFC3339, e.TS)
	return model.XPEvent{
		EventID:     e.EventID,
		CreatorID:   e.CreatorID,
		CommunityID: e.CommunityID,
		Amount:      e.Amount,
		TS:          ts,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
