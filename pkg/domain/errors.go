package domain

import (
	"errors"
	"fmt"
)

// ErrFlowNotFound is returned when no flow is registered for the requested bot.
var ErrFlowNotFound = errors.New("flow not found")

// ConfigError marks a bot-authoring bug: an unknown invocation source, a
// dangling step reference, a malformed transition table. It is surfaced
// distinctly from caller input errors, which are always recovered in-band
// with a retry prompt.
type ConfigError struct {
	Bot    string
	Step   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("bot %q misconfigured at step %q: %s", e.Bot, e.Step, e.Reason)
	}
	return fmt.Sprintf("bot %q misconfigured: %s", e.Bot, e.Reason)
}

// NewConfigError builds a ConfigError for the given bot and step.
func NewConfigError(bot, step, format string, args ...any) *ConfigError {
	return &ConfigError{Bot: bot, Step: step, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
