// Package simulator drives a bot conversation against the engine the way
// the external NLU service would: it elicits input for the requested slot,
// delegates to the fulfillment hook when asked, and carries the session
// attribute bag between turns. Used by the simulate CLI command and by
// end-to-end tests.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

// IO abstracts the caller side of a simulated conversation.
type IO interface {
	// Say presents the bot's spoken messages.
	Say(msgs []domain.Message) error
	// Ask collects the caller's next utterance.
	Ask(ctx context.Context, prompt string) (string, error)
	// Event reports an out-of-band event (transfer, close, delegate).
	Event(kind, detail string) error
}

// Result summarizes how a simulated conversation ended.
type Result struct {
	State       domain.IntentState
	Action      string
	Destination string
	Reason      string
	Turns       int
}

// Turner is the engine surface the simulator drives.
type Turner interface {
	Turn(ctx context.Context, in *domain.TurnInput) (*domain.TurnOutput, error)
}

// Simulator runs one conversation for one flow.
type Simulator struct {
	engine Turner
	flow   *flow.Flow
	io     IO
	logger *slog.Logger

	sessionID string
	maxTurns  int
}

// Option configures the simulator.
type Option func(*Simulator)

// WithLogger sets the simulator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithMaxTurns bounds the conversation length; a guard against flows that
// never close when driven by scripted input.
func WithMaxTurns(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// New creates a simulator for a flow.
func New(engine Turner, f *flow.Flow, userIO IO, opts ...Option) *Simulator {
	s := &Simulator{
		engine:    engine,
		flow:      f,
		io:        userIO,
		logger:    logging.NewNop(),
		sessionID: uuid.NewString(),
		maxTurns:  100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plays the conversation until it closes or input runs out.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	attrs := map[string]string{}
	slots := map[string]*domain.SlotValue{}
	source := domain.SourceDialog
	result := &Result{}

	for turn := 0; turn < s.maxTurns; turn++ {
		in := &domain.TurnInput{
			InvocationSource: source,
			SessionID:        s.sessionID,
			Bot:              domain.Bot{Name: s.flow.Name, LocaleID: s.flow.Locale},
			SessionState: domain.SessionState{
				Intent:            &domain.Intent{Name: s.flow.Intent, Slots: slots},
				SessionAttributes: attrs,
			},
		}

		out, err := s.engine.Turn(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", turn+1, err)
		}
		result.Turns = turn + 1

		if len(out.Messages) > 0 {
			if err := s.io.Say(out.Messages); err != nil {
				return nil, err
			}
		}

		attrs = out.SessionState.SessionAttributes
		if out.SessionState.Intent != nil && out.SessionState.Intent.Slots != nil {
			slots = out.SessionState.Intent.Slots
		}

		switch out.Directive() {
		case domain.ActionElicitSlot:
			slotName := out.SessionState.DialogAction.SlotToElicit
			answer, err := s.io.Ask(ctx, slotName)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return result, nil
				}
				return nil, err
			}
			next := make(map[string]*domain.SlotValue, len(slots)+1)
			for k, v := range slots {
				next[k] = v
			}
			next[slotName] = domain.NewSlotValue(answer)
			slots = next
			s.logger.Debug("slot filled", "slot", slotName)

		case domain.ActionDelegate:
			// The NLU layer would now decide collection is complete and
			// invoke the fulfillment hook.
			s.io.Event("delegate", "collection complete, invoking fulfillment")
			source = domain.SourceFulfillment

		case domain.ActionElicitIntent:
			// Follow-up menus end the scripted conversation.
			s.io.Event("elicit-intent", "bot is asking what to do next")
			return result, nil

		case domain.ActionClose:
			if out.SessionState.Intent != nil {
				result.State = out.SessionState.Intent.State
			}
			result.Action = attrs[domain.AttrAction]
			result.Destination = attrs[domain.AttrDestination]
			result.Reason = attrs[domain.AttrReason]
			detail := string(result.State)
			if result.Action != "" {
				detail += " " + result.Action
			}
			if result.Destination != "" {
				detail += " -> " + result.Destination
			}
			s.io.Event("close", detail)
			return result, nil

		default:
			return nil, fmt.Errorf("turn %d: unexpected directive %q", turn+1, out.Directive())
		}
	}
	return nil, fmt.Errorf("conversation did not close within %d turns", s.maxTurns)
}
