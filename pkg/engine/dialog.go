package engine

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/espalier-dev/espalier/pkg/response"
	"github.com/espalier-dev/espalier/pkg/slot"
)

// FallbackIntentName is the NLU service's catch-all intent for unrecognized
// utterances. It is treated as an invalid answer to the active step.
const FallbackIntentName = "FallbackIntent"

// dialog is the DialogCodeHook controller: it decides whether to re-ask,
// advance, or hand off while collection is in progress.
func (e *Engine) dialog(ctx context.Context, fl *flow.Flow, in *domain.TurnInput, sess *domain.Session) (*domain.TurnOutput, error) {
	if name := in.IntentName(); name != fl.Intent {
		if out, handled := e.utility(fl, in, sess, name); handled {
			return out, nil
		}
		if name != FallbackIntentName {
			// Not ours and not a utility: let the NLU layer route it.
			return response.Delegate(in.SessionState.Intent, sess.Encode()), nil
		}
	}

	switch fl.EffectiveMode() {
	case flow.ModeSlots:
		return e.dialogSlots(fl, in, sess)
	default:
		return e.dialogGraph(fl, in, sess)
	}
}

// dialogGraph walks the step graph: cold start, terminal hand-off,
// re-prompt on absent answer, retry on invalid, advance on a recognized
// outcome.
func (e *Engine) dialogGraph(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session) (*domain.TurnOutput, error) {
	// Cold start: initialize the marker and ask the first question. This
	// never silently advances past step one.
	if sess.CurrentStep == "" {
		first, err := fl.First()
		if err != nil {
			return nil, err
		}
		sess.CurrentStep = first.ID
		if first.Terminal {
			return e.closeTerminal(fl, in, sess, first), nil
		}
		return e.elicit(fl, in, sess, first, first.PromptText()), nil
	}

	step, err := fl.Current(sess)
	if err != nil {
		return e.failClosed(fl, in, sess, err), nil
	}

	// Some bots close directly from the dialog hook; this must produce the
	// same response the fulfillment hook would.
	if step.Terminal {
		return e.closeTerminal(fl, in, sess, step), nil
	}

	if in.IntentName() == FallbackIntentName {
		return e.retry(fl, in, sess, step), nil
	}

	value, filled := in.Slot(step.Slot)
	if !filled {
		// Right after advancing, before the caller has answered.
		return e.elicit(fl, in, sess, step, step.PromptText()), nil
	}

	outcome, record := judge(step, value)
	if outcome == slot.OutcomeInvalid {
		return e.retry(fl, in, sess, step), nil
	}

	sess.Outcomes[step.ID] = record
	sess.Retries = 0

	nextID, err := fl.Advance(step, string(outcome))
	if err != nil {
		return e.failClosed(fl, in, sess, err), nil
	}
	next, err := fl.Step(nextID)
	if err != nil {
		return e.failClosed(fl, in, sess, err), nil
	}
	sess.CurrentStep = next.ID

	if next.Terminal {
		return e.closeTerminal(fl, in, sess, next), nil
	}
	return e.elicit(fl, in, sess, next, next.PromptText()), nil
}

// judge normalizes the caller's answer under the step's expectation and
// returns both the transition outcome and the value recorded against the
// step id. Yes/no and choice steps record the outcome itself; validator
// steps record the raw value so fulfillment can read it back.
func judge(step *flow.Step, value string) (slot.Outcome, string) {
	switch kind := step.ExpectKind(); kind {
	case "yesno":
		outcome := slot.Normalize(value)
		return outcome, string(outcome)
	case "choice":
		choice, ok := slot.MatchChoice(value, step.NextOutcomes())
		if !ok {
			return slot.OutcomeInvalid, ""
		}
		return slot.Outcome(choice), choice
	default:
		validate, ok := slot.Validator(kind)
		if !ok || !validate(value).Valid {
			return slot.OutcomeInvalid, ""
		}
		return slot.OutcomeValid, value
	}
}

// elicit asks for the step's slot. The slot is cleared in the outgoing
// intent so a stale fill from a previous visit cannot skip the question.
func (e *Engine) elicit(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, step *flow.Step, prompt string) *domain.TurnOutput {
	intent := response.ClearSlot(in.SessionState.Intent, step.Slot)
	return response.ElicitSlot(intent, sess.Encode(), step.Slot, domain.Plain(prompt))
}

// retry handles an invalid answer: bump the counter, clear the bad value
// and re-ask with the retry prompt, or fall back to the agent transfer once
// the budget is exhausted. Retries never loop indefinitely.
func (e *Engine) retry(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, step *flow.Step) *domain.TurnOutput {
	sess.Retries++
	observability.SlotRetriesTotal.WithLabelValues(fl.Name, step.ID).Inc()
	if sess.Retries > fl.StepRetryBudget(step) {
		e.logger.Info("retry budget exhausted", "bot", fl.Name, "step", step.ID, "retries", sess.Retries)
		return e.closeRouting(fl, in, sess, fl.Fallback)
	}
	return e.elicit(fl, in, sess, step, step.RetryPromptText())
}

// dialogSlots is the conditional-slot controller: requiredness is
// re-evaluated after every fill, and elicitation stops once no
// required-and-unfilled slot remains. The current-step marker tracks the
// slot being worked on so the retry counter resets on advance.
func (e *Engine) dialogSlots(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session) (*domain.TurnOutput, error) {
	filled := filledSlots(fl, in)

	for i := range fl.Slots {
		def := &fl.Slots[i]
		if !def.IsRequired(filled) {
			continue
		}
		value, ok := in.Slot(def.Name)
		if !ok {
			e.focusSlot(sess, def.Name)
			intent := response.ClearSlot(in.SessionState.Intent, def.Name)
			return response.ElicitSlot(intent, sess.Encode(), def.Name, domain.Plain(def.Prompt)), nil
		}
		if res := def.Validate(value); !res.Valid {
			e.focusSlot(sess, def.Name)
			sess.Retries++
			observability.SlotRetriesTotal.WithLabelValues(fl.Name, def.Name).Inc()
			e.logger.Debug("slot validation failed", "bot", fl.Name, "slot", def.Name, "reason", res.Reason)
			if sess.Retries > fl.SlotRetryBudget(def) {
				return e.closeRouting(fl, in, sess, fl.Fallback), nil
			}
			intent := response.ClearSlot(in.SessionState.Intent, def.Name)
			return response.ElicitSlot(intent, sess.Encode(), def.Name, domain.Plain(def.RetryPromptText())), nil
		}
	}

	// Nothing left to collect: hand control back so the NLU layer invokes
	// the fulfillment hook.
	sess.CurrentStep = ""
	sess.Retries = 0
	return response.Delegate(in.SessionState.Intent, sess.Encode()), nil
}

// focusSlot moves the marker to the slot being elicited, resetting the
// retry counter when focus changes.
func (e *Engine) focusSlot(sess *domain.Session, name string) {
	if sess.CurrentStep != name {
		sess.CurrentStep = name
		sess.Retries = 0
	}
}

// filledSlots snapshots the validated fill state used for requiredness
// evaluation and rule matching.
func filledSlots(fl *flow.Flow, in *domain.TurnInput) map[string]string {
	filled := make(map[string]string, len(fl.Slots))
	for i := range fl.Slots {
		name := fl.Slots[i].Name
		if value, ok := in.Slot(name); ok {
			filled[name] = value
		}
	}
	return filled
}

// utility serves the small dedicated branches that never join the step
// graph: canned answers, repeat-the-question, and routed closes such as
// return-to-menu.
func (e *Engine) utility(fl *flow.Flow, in *domain.TurnInput, sess *domain.Session, name string) (*domain.TurnOutput, bool) {
	u, ok := fl.Utilities[name]
	if !ok {
		return nil, false
	}
	if u.Repeat {
		step, err := fl.Current(sess)
		if err != nil {
			return e.failClosed(fl, in, sess, err), true
		}
		if sess.CurrentStep == "" {
			sess.CurrentStep = step.ID
		}
		if step.Terminal {
			return e.closeTerminal(fl, in, sess, step), true
		}
		return e.elicit(fl, in, sess, step, step.PromptText()), true
	}
	if u.Routing != nil {
		return e.closeRouting(fl, in, sess, *u.Routing), true
	}
	return response.ElicitIntent(sess.Encode(), domain.Plain(u.Message)), true
}
