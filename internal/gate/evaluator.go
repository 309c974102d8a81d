package gate

import (
	"context"
	"errors"
)

// ErrCheckFailed marks a transient evaluator failure (network, timeout).
// Callers may retry; it must never be presented as a denial of ownership.
var ErrCheckFailed = errors.New("entitlement check failed")

// Decision is the evaluator's answer for one {identity, rule} pair.
// A denial is a valid decision, not an error.
type Decision struct {
	HasAccess bool
	Balance   *uint64 // actual holdings, when the backend reports them
}

// Evaluator resolves whether an identity may play gated content.
// Implementations must be idempotent: the same inputs can be re-checked
// any number of times.
type Evaluator interface {
	Evaluate(ctx context.Context, identity string, rule Rule) (Decision, error)
}

// Status is the transient snapshot consumers read while a check is in
// flight or after it resolved. It is overwritten per check, never stored.
type Status struct {
	Checking  bool    `json:"checking"`
	HasAccess bool    `json:"has_access"`
	Balance   *uint64 `json:"balance,omitempty"`
	Required  *uint64 `json:"required,omitempty"`
	Err       string  `json:"error,omitempty"`
}

// Denied builds the status for a resolved denial, including the
// required-vs-actual balance the UI shows.
func Denied(rule Rule, dec Decision) Status {
	st := Status{HasAccess: false, Balance: dec.Balance}
	if tg, ok := rule.(TokenGate); ok {
		required := tg.MinAmount
		st.Required = &required
	}
	return st
}
