// Package model contains domain models passed between layers.
package model

import "time"

// XPEvent represents an XP-earning action settled against one community.
// Fields mirror the OpenAPI schema for /events.
type XPEvent struct {
	EventID     string    // unique id for idempotency
	CreatorID   string    // creator earning the XP
	CommunityID string    // community the XP was earned in
	Amount      int64     // XP amount credited to the community total
	TS          time.Time // event timestamp
}
