package momentum

import (
	"fmt"
	"strings"
)

// EventType is the closed set of events the engine reacts to.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventGoal
	EventShotOnTarget
	EventMissedChance
	EventSave
	EventYellowCard
	EventRedCard
	EventSuccessfulDribble
	EventTackle
	EventInterception
	EventCorner
	EventKeyPass
	EventCounterAttack
	EventHighPressSequence
	EventPossessionSequence
	EventTacticalSubstitution
	EventFormationChange
	EventCrowdSurge
	EventInjury
	EventVARReview
	EventRefereeDecision

	eventTypeCount
)

var eventTypeNames = [eventTypeCount]string{
	EventUnknown:              "unknown",
	EventGoal:                 "goal",
	EventShotOnTarget:         "shot_on_target",
	EventMissedChance:         "missed_chance",
	EventSave:                 "save",
	EventYellowCard:           "yellow_card",
	EventRedCard:              "red_card",
	EventSuccessfulDribble:    "successful_dribble",
	EventTackle:               "tackle",
	EventInterception:         "interception",
	EventCorner:               "corner",
	EventKeyPass:              "key_pass",
	EventCounterAttack:        "counter_attack",
	EventHighPressSequence:    "high_press_sequence",
	EventPossessionSequence:   "possession_sequence",
	EventTacticalSubstitution: "tactical_substitution",
	EventFormationChange:      "formation_change",
	EventCrowdSurge:           "crowd_surge",
	EventInjury:               "injury",
	EventVARReview:            "var_review",
	EventRefereeDecision:      "referee_decision",
}

var eventTypesByName = func() map[string]EventType {
	m := make(map[string]EventType, eventTypeCount)
	for t, name := range eventTypeNames {
		m[name] = EventType(t)
	}
	return m
}()

// ParseEventType maps a wire name to its EventType. Unregistered names map
// to EventUnknown; that is valid input with zero impact.
func ParseEventType(s string) EventType {
	if t, ok := eventTypesByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return EventUnknown
}

// EventTypes lists every known type except EventUnknown.
func EventTypes() []EventType {
	out := make([]EventType, 0, eventTypeCount-1)
	for t := EventUnknown + 1; t < eventTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t EventType) String() string {
	if t < eventTypeCount {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// MarshalText encodes the wire name.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a wire name; unknown names become EventUnknown.
func (t *EventType) UnmarshalText(b []byte) error {
	*t = ParseEventType(string(b))
	return nil
}

// Event is one occurrence in the match. RawType keeps the submitted name so
// unknown events stay identifiable in the log.
type Event struct {
	Type    EventType `json:"type"`
	RawType string    `json:"raw_type,omitempty"`
	Side    Side      `json:"side"`
	Minute  int       `json:"minute"`
}

// NewEvent parses the wire type name and validates side and minute.
func NewEvent(typ, side string, minute int) (Event, error) {
	s, err := ParseSide(side)
	if err != nil {
		return Event{}, err
	}
	e := Event{Type: ParseEventType(typ), RawType: typ, Side: s, Minute: minute}
	return e, e.validate()
}

func (e Event) validate() error {
	if !e.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, e.Side)
	}
	if e.Minute < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinute, e.Minute)
	}
	return nil
}

// baseImpacts holds the per-dimension impact template of every event type.
// Dimensions missing from a template receive no impact.
var baseImpacts = [eventTypeCount]map[string]float64{
	EventUnknown: {},
	EventGoal: {
		Psychological: 0.7, Tactical: 0.3, Physical: 0.1,
		Technical: 0.2, Environmental: 0.6, Strategic: 0.2,
	},
	EventShotOnTarget: {
		Psychological: 0.15, Tactical: 0.1, Physical: 0.05,
		Technical: 0.15, Environmental: 0.1, Strategic: 0.05,
	},
	EventMissedChance: {
		Psychological: -0.25, Tactical: -0.1, Physical: 0,
		Technical: -0.2, Environmental: -0.15, Strategic: -0.05,
	},
	EventSave: {
		Psychological: 0.2, Tactical: 0.1, Physical: 0.1,
		Technical: 0.2, Environmental: 0.15, Strategic: 0.05,
	},
	EventYellowCard: {
		Psychological: -0.15, Tactical: -0.1, Physical: -0.05,
		Technical: 0, Environmental: -0.05, Strategic: -0.2,
	},
	EventRedCard: {
		Psychological: -0.5, Tactical: -0.6, Physical: -0.3,
		Technical: -0.1, Environmental: -0.3, Strategic: -0.7,
	},
	EventSuccessfulDribble: {
		Psychological: 0.1, Tactical: 0.05, Physical: 0.1,
		Technical: 0.2, Environmental: 0.05, Strategic: 0,
	},
	EventTackle: {
		Psychological: 0.05, Tactical: 0.05, Physical: 0.15,
		Technical: 0.1, Environmental: 0, Strategic: 0,
	},
	EventInterception: {
		Psychological: 0.05, Tactical: 0.1, Physical: 0.1,
		Technical: 0.1, Environmental: 0, Strategic: 0.05,
	},
	EventCorner: {
		Psychological: 0.05, Tactical: 0.1, Physical: 0,
		Technical: 0, Environmental: 0.15, Strategic: 0.05,
	},
	EventKeyPass: {
		Psychological: 0.1, Tactical: 0.15, Physical: 0,
		Technical: 0.25, Environmental: 0.05, Strategic: 0.1,
	},
	EventCounterAttack: {
		Psychological: 0.15, Tactical: 0.2, Physical: 0.2,
		Technical: 0.1, Environmental: 0.1, Strategic: 0.15,
	},
	EventHighPressSequence: {
		Psychological: 0.1, Tactical: 0.15, Physical: 0.25,
		Technical: 0.05, Environmental: 0.05, Strategic: 0.15,
	},
	EventPossessionSequence: {
		Psychological: 0.05, Tactical: 0.15, Physical: 0.05,
		Technical: 0.15, Environmental: 0, Strategic: 0.1,
	},
	EventTacticalSubstitution: {
		Psychological: 0.1, Tactical: 0.2, Physical: 0.15,
		Technical: 0, Environmental: 0.05, Strategic: 0.35,
	},
	EventFormationChange: {
		Psychological: 0.1, Tactical: 0.3, Physical: 0,
		Technical: 0, Environmental: 0, Strategic: 0.4,
	},
	EventCrowdSurge: {
		Psychological: 0.2, Tactical: 0, Physical: 0.05,
		Technical: 0, Environmental: 0.5, Strategic: 0,
	},
	EventInjury: {
		Psychological: -0.25, Tactical: -0.2, Physical: -0.3,
		Technical: -0.1, Environmental: -0.1, Strategic: -0.2,
	},
	EventVARReview: {
		Psychological: -0.1, Tactical: 0, Physical: 0,
		Technical: 0, Environmental: 0.3, Strategic: 0,
	},
	EventRefereeDecision: {
		Psychological: 0, Tactical: 0, Physical: 0,
		Technical: 0, Environmental: 0.2, Strategic: 0,
	},
}

// BaseImpact returns the template value of t for the named dimension.
func BaseImpact(t EventType, dimension string) float64 {
	if t >= eventTypeCount {
		return 0
	}
	return baseImpacts[t][dimension]
}
