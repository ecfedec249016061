package engine

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/response"
	"github.com/espalier-dev/espalier/pkg/slot"
)

// fulfill is the FulfillmentCodeHook controller: collection is complete and
// a terminal decision is due. Every branch sets a spoken message and, when
// routing is implied, the action/destination/reason attributes downstream
// telephony consumes. Combinations nobody anticipated fail safe with the
// flow's fallback transfer instead of silently succeeding or crashing.
func (e *Engine) fulfill(ctx context.Context, fl *flow.Flow, in *domain.TurnInput, sess *domain.Session) (*domain.TurnOutput, error) {
	// A terminal current step closes here exactly as it would from the
	// dialog hook; both code paths share closeTerminal.
	if fl.EffectiveMode() == flow.ModeGraph && sess.CurrentStep != "" {
		step, err := fl.Current(sess)
		if err != nil {
			return e.failClosed(fl, in, sess, err), nil
		}
		if step.Terminal {
			return e.closeTerminal(fl, in, sess, step), nil
		}
	}

	facts := e.facts(fl, in, sess)

	for i := range fl.Rules {
		if fl.Rules[i].Matches(facts) {
			return e.closeRouting(fl, in, sess, fl.Rules[i].Routing), nil
		}
	}

	if fl.Verify != nil {
		return e.verify(ctx, fl, in, sess, facts)
	}

	e.logger.Warn("no fulfillment branch matched, failing safe", "bot", fl.Name, "step", sess.CurrentStep)
	return e.closeRouting(fl, in, sess, fl.Fallback), nil
}

// facts merges the recorded step outcomes with the (normalized) final slot
// values so rules can match either vocabulary.
func (e *Engine) facts(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session) map[string]string {
	facts := make(map[string]string, len(sess.Outcomes)+len(fl.Slots))
	for step, outcome := range sess.Outcomes {
		facts[step] = outcome
	}
	for i := range fl.Slots {
		def := &fl.Slots[i]
		value, ok := in.Slot(def.Name)
		if !ok {
			continue
		}
		if def.Validator == "yesno" {
			facts[def.Name] = string(slot.Normalize(value))
			continue
		}
		facts[def.Name] = value
	}
	return facts
}

// verify calls the injected capability and maps its enum result to the
// flow's configured routing. A transport error or an unexpected result is
// converted to the apology-plus-transfer path with a reason attribute; raw
// error text is never spoken.
func (e *Engine) verify(ctx context.Context, fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, facts map[string]string) (*domain.TurnOutput, error) {
	if e.verifier == nil {
		return nil, domain.NewConfigError(fl.Name, "", "flow declares verify but no verifier is installed")
	}

	result, err := e.verifier.Verify(ctx, ports.VerifyRequest{
		Bot:      fl.Name,
		Locale:   fl.Locale,
		Slots:    filledSlots(fl, in),
		Outcomes: facts,
	})
	if err != nil {
		e.logger.Error("verifier call failed", "bot", fl.Name, "err", err)
		routing := fl.Fallback
		routing.Reason = "VerificationError"
		return e.closeRouting(fl, in, sess, routing), nil
	}

	switch result {
	case ports.VerifySuccess:
		return e.closeRouting(fl, in, sess, fl.Verify.OnSuccess), nil
	case ports.VerifyFailed:
		return e.closeRouting(fl, in, sess, fl.Verify.OnFailure), nil
	case ports.VerifyBlocked:
		return e.closeRouting(fl, in, sess, fl.Verify.OnBlocked), nil
	default:
		e.logger.Error("verifier returned unknown result", "bot", fl.Name, "result", result)
		return e.closeRouting(fl, in, sess, fl.Fallback), nil
	}
}

// closeTerminal closes the intent at a terminal step. Dialog and
// fulfillment hooks both land here, so reaching the same step through
// either produces an identical response.
func (e *Engine) closeTerminal(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, step *flow.Step) *domain.TurnOutput {
	sess.CurrentStep = step.ID
	sess.Retries = 0

	routing := flow.Routing{Message: step.PromptText()}
	if step.Routing != nil {
		routing = *step.Routing
		if routing.Message == "" {
			routing.Message = step.PromptText()
		}
	}
	return e.closeRouting(fl, in, sess, routing)
}

// closeRouting stamps the routing attributes and closes. Empty action means
// "answered, stay in this bot"; Fail marks the intent Failed so the NLU
// layer picks another path.
func (e *Engine) closeRouting(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, routing flow.Routing) *domain.TurnOutput {
	if routing.Action != "" || routing.Destination != "" {
		sess.SetRoute(routing.Action, routing.Destination, routing.Reason)
		reason := routing.Reason
		if reason == "" {
			reason = "unspecified"
		}
		observability.TransfersTotal.WithLabelValues(reason).Inc()
	}

	message := routing.Message
	if message == "" {
		message = apologyMessage
	}

	state := domain.IntentFulfilled
	if routing.Fail {
		state = domain.IntentFailed
	}
	return response.Close(state, in.IntentName(), sess.Encode(), domain.Plain(message))
}
