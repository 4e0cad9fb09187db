// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stitchsocial/clout/internal/domain/matching"
	"github.com/stitchsocial/clout/internal/domain/types"
)

// MatchDependencies defines the interface for match scoring.
type MatchDependencies interface {
	MatchScore(req matching.CampaignRequirements, m matching.CreatorMetrics) int
}

// MatchHandler computes opportunity match scores on demand.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// campaignRequest mirrors the OpenAPI campaign requirements schema.
type campaignRequest struct {
	MinimumTier         string   `json:"minimum_tier"`
	MinFollowers        *int64   `json:"min_followers,omitempty"`
	MinEngagementScore  *float64 `json:"min_engagement_score,omitempty"`
	MinEngagementRate   *float64 `json:"min_engagement_rate,omitempty"`
	MinViews            *int64   `json:"min_views,omitempty"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	RequiredHashtags    []string `json:"required_hashtags,omitempty"`
}

// creatorRequest mirrors the OpenAPI creator metrics schema.
type creatorRequest struct {
	Tier            string   `json:"tier"`
	Followers       int64    `json:"followers"`
	EngagementScore float64  `json:"engagement_score"`
	EngagementRate  float64  `json:"engagement_rate"`
	Views           int64    `json:"views"`
	Category        string   `json:"category,omitempty"`
	Hashtags        []string `json:"hashtags,omitempty"`
}

// matchRequest mirrors the OpenAPI schema for POST /match.
type matchRequest struct {
	Campaign campaignRequest `json:"campaign"`
	Creator  creatorRequest  `json:"creator"`
}

func (m matchRequest) validate() error {
	if strings.TrimSpace(m.Creator.Tier) == "" {
		return errors.New("missing creator.tier")
	}
	return nil
}

type matchResponse struct {
	Score int `json:"score"`
}

// HandlePostMatch handles POST /match requests.
func (h *MatchHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	campaign := matching.CampaignRequirements{
		MinimumTier:         types.ParseTier(req.Campaign.MinimumTier),
		MinFollowers:        req.Campaign.MinFollowers,
		MinEngagementScore:  req.Campaign.MinEngagementScore,
		MinEngagementRate:   req.Campaign.MinEngagementRate,
		MinViews:            req.Campaign.MinViews,
		PreferredCategories: req.Campaign.PreferredCategories,
		RequiredHashtags:    req.Campaign.RequiredHashtags,
	}
	creator := matching.CreatorMetrics{
		Tier:            types.ParseTier(req.Creator.Tier),
		Followers:       req.Creator.Followers,
		EngagementScore: req.Creator.EngagementScore,
		EngagementRate:  req.Creator.EngagementRate,
		Views:           req.Creator.Views,
		Category:        req.Creator.Category,
		Hashtags:        req.Creator.Hashtags,
	}

	writeJSON(w, http.StatusOK, matchResponse{Score: h.deps.MatchScore(campaign, creator)})
}
