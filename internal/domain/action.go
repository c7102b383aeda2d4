package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ActionEntry is one locally journaled mining action.
type ActionEntry struct {
	ID         string
	Kind       ActionKind
	SessionKey SessionKey // zero for start and stop-all
	LandID     int64
	ToolIDs    []int64
	Result     ActionResult
	Message    string
	Amount     decimal.NullDecimal
	CreatedAt  time.Time
}

// Validate checks the entry before it is written.
func (e *ActionEntry) Validate() error {
	if !ValidActionKinds[e.Kind] {
		return fmt.Errorf("invalid action kind %q", e.Kind)
	}
	switch e.Result {
	case ResultOK, ResultEmpty, ResultError:
	default:
		return fmt.Errorf("invalid action result %q", e.Result)
	}
	if (e.Kind == ActionStop || e.Kind == ActionCollect) && e.SessionKey <= 0 {
		return fmt.Errorf("%s action requires a session key", e.Kind)
	}
	return nil
}
