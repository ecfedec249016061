package ports

import (
	"context"
	"time"
)

// TurnRecord is a per-turn audit summary. Strictly observational: nothing
// in the engine's control flow reads records back.
type TurnRecord struct {
	ID        string    `json:"id"`
	Bot       string    `json:"bot"`
	Locale    string    `json:"locale,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Intent    string    `json:"intent"`
	Source    string    `json:"source"`
	Step      string    `json:"step,omitempty"`
	Directive string    `json:"directive"`
	Retries   int       `json:"retries,omitempty"`
	At        time.Time `json:"at"`
}

// TurnStore persists turn audit records for diagnostics.
type TurnStore interface {
	// Append records one turn. Failures are logged by the caller and never
	// affect the directive returned to the caller.
	Append(ctx context.Context, rec TurnRecord) error

	// Recent returns up to n of the latest records for a bot, newest first.
	Recent(ctx context.Context, bot string, n int) ([]TurnRecord, error)
}
