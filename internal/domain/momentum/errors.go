package momentum

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the engine. Callers match them with errors.Is.
var (
	ErrNotInitialized     = errors.New("momentum: match not initialized")
	ErrInvalidConfig      = errors.New("momentum: invalid match config")
	ErrInvalidDimension   = errors.New("momentum: invalid dimension")
	ErrInvalidSide        = errors.New("momentum: invalid side")
	ErrInvalidMinute      = errors.New("momentum: invalid minute")
	ErrInvalidHorizon     = errors.New("momentum: invalid forecast horizon")
	ErrMinuteNotRecorded  = errors.New("momentum: no snapshot recorded at minute")
	ErrInvariantViolation = errors.New("momentum: value escaped [0,1]")
)

// WarningCode classifies a recoverable data-quality issue.
type WarningCode string

const (
	// WarnUnknownEventType marks an event whose type has no impact template.
	WarnUnknownEventType WarningCode = "unknown_event_type"
	// WarnInsufficientHistory marks a degraded result computed on too few snapshots.
	WarnInsufficientHistory WarningCode = "insufficient_history"
)

// Warning is reported alongside a best-effort result. It never aborts an operation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return string(w.Code) + ": " + w.Message }

func insufficientHistory(op string, have, need int) *Warning {
	return &Warning{
		Code:    WarnInsufficientHistory,
		Message: fmt.Sprintf("%s needs %d snapshots, have %d", op, need, have),
	}
}
