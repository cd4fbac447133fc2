// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// MatchEvent is a match event submitted by clients for asynchronous processing.
// Fields mirror the OpenAPI schema for /matches/{id}/events.
type MatchEvent struct {
	EventID    string    // unique id for idempotency, scoped to the match
	MatchID    string    // match the event belongs to
	Type       string    // event type name, e.g. "goal", "corner"
	Side       string    // "home" or "away"
	Minute     int       // match minute
	ReceivedAt time.Time // time the service accepted the event
}

// DedupeKey scopes the event id to its match so ids may repeat across matches.
// The match id is length-prefixed, so ids containing ':' cannot collide and
// MatchEvent{MatchID: id}.DedupeKey() prefixes exactly the keys of match id.
func (e MatchEvent) DedupeKey() string {
	return strconv.Itoa(len(e.MatchID)) + ":" + e.MatchID + ":" + e.EventID
}

// MatchSummary describes a live match in listings.
type MatchSummary struct {
	MatchID   string    `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Events    int       `json:"events"`
	CreatedAt time.Time `json:"created_at"`
}
