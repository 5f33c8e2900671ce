package posting

import (
	"errors"
	"fmt"
)

// ErrAlreadyPosted is returned when an event already carries a journal
// entry link. It is benign: the idempotency guard working as intended.
var ErrAlreadyPosted = errors.New("event already posted")

// ConfigError means the tenant's account mappings cannot produce a valid
// entry for this event: a required mapping is unset, or the policy produced
// an unbalanced entry. It is never retryable; an operator must fix the
// tenant configuration first.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

func missingMapping(name string) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf("no %s configured for this tenant", name)}
}
