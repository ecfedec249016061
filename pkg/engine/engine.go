// Package engine implements the per-turn dialog and fulfillment
// controllers. Each turn is a stateless function of the turn input and the
// carried-forward session attributes: the engine holds configuration and
// injected capabilities, never conversation state, so simultaneous calls
// are fully isolated.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/registry"
	"github.com/espalier-dev/espalier/pkg/response"
)

// apologyMessage is the generic fail-safe script. It must never be replaced
// by raw error text: internals do not leak into spoken messages.
const apologyMessage = "I'm sorry, something went wrong on our end. Let me connect you with an agent who can help."

// Engine turns a TurnInput into a directive.
type Engine struct {
	flows    *registry.Registry
	verifier ports.Verifier
	store    ports.TurnStore
	logger   *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithVerifier injects the external verification capability used by flows
// that declare a verify section.
func WithVerifier(v ports.Verifier) Option {
	return func(e *Engine) { e.verifier = v }
}

// WithStore enables best-effort turn audit records.
func WithStore(s ports.TurnStore) Option {
	return func(e *Engine) { e.store = s }
}

// New creates an engine over a flow registry.
func New(flows *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		flows:  flows,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one invocation. Caller input problems always come back as
// a well-formed directive; only configuration bugs (unknown invocation
// source, unregistered bot, malformed tables that cannot fail closed)
// surface as an error. A panic anywhere below is converted to the generic
// fail-safe close.
func (e *Engine) Turn(ctx context.Context, in *domain.TurnInput) (out *domain.TurnOutput, err error) {
	start := time.Now()
	defer func() {
		observability.TurnSeconds.Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn panicked", "bot", in.Bot.Name, "intent", in.IntentName(), "panic", r)
			out, err = e.panicClose(in), nil
		}
	}()

	fl, lookupErr := e.flows.Lookup(in.Bot.Name, in.Bot.LocaleID)
	if lookupErr != nil {
		observability.ConfigErrorsTotal.WithLabelValues(in.Bot.Name).Inc()
		return nil, lookupErr
	}

	sess := domain.DecodeSession(in.SessionState.SessionAttributes)

	switch in.InvocationSource {
	case domain.SourceDialog:
		out, err = e.dialog(ctx, fl, in, sess)
	case domain.SourceFulfillment:
		out, err = e.fulfill(ctx, fl, in, sess)
	default:
		// A bot invoking us with anything else is misconfigured; this is
		// not a caller error and must not look like one.
		observability.ConfigErrorsTotal.WithLabelValues(in.Bot.Name).Inc()
		return nil, domain.NewConfigError(in.Bot.Name, "", "unknown invocation source %q", in.InvocationSource)
	}
	if err != nil {
		if domain.IsConfigError(err) {
			observability.ConfigErrorsTotal.WithLabelValues(in.Bot.Name).Inc()
		}
		return nil, err
	}

	observability.TurnsTotal.WithLabelValues(in.Bot.Name, string(in.InvocationSource)).Inc()
	observability.DirectivesTotal.WithLabelValues(string(out.Directive())).Inc()
	e.audit(ctx, in, out, sess)
	return out, nil
}

// panicClose is the last-resort response: a generic apology plus an agent
// transfer, with the caller's attributes passed through.
func (e *Engine) panicClose(in *domain.TurnInput) *domain.TurnOutput {
	sess := domain.DecodeSession(in.SessionState.SessionAttributes)
	sess.SetRoute(domain.RouteQueueTransfer, "", "InternalError")
	observability.TransfersTotal.WithLabelValues("InternalError").Inc()
	return response.Close(domain.IntentFailed, in.IntentName(), sess.Encode(), domain.Plain(apologyMessage))
}

// audit records the turn summary, best effort. Store failures are logged
// and never change the directive.
func (e *Engine) audit(ctx context.Context, in *domain.TurnInput, out *domain.TurnOutput, sess *domain.Session) {
	if e.store == nil {
		return
	}
	rec := ports.TurnRecord{
		ID:        uuid.NewString(),
		Bot:       in.Bot.Name,
		Locale:    in.Bot.LocaleID,
		SessionID: in.SessionID,
		Intent:    in.IntentName(),
		Source:    string(in.InvocationSource),
		Step:      sess.CurrentStep,
		Directive: string(out.Directive()),
		Retries:   sess.Retries,
		At:        time.Now().UTC(),
	}
	if err := e.store.Append(ctx, rec); err != nil {
		e.logger.Warn("turn audit append failed", "bot", rec.Bot, "err", err)
	}
}

// failClosed is the response to a malformed transition table discovered
// mid-conversation: delegate instead of crashing the turn, and leave a
// loud log for the bot author.
func (e *Engine) failClosed(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, cause error) *domain.TurnOutput {
	e.logger.Error("flow table malformed, failing closed", "bot", fl.Name, "step", sess.CurrentStep, "err", cause)
	observability.ConfigErrorsTotal.WithLabelValues(fl.Name).Inc()
	return response.Delegate(in.SessionState.Intent, sess.Encode())
}
