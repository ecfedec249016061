// Package flow holds the declarative description of one bot conversation:
// an ordered step graph (or conditional slot sequence), routing for its
// terminal branches, and the fulfillment rules applied once collection is
// done. Flows are static configuration, immutable during a conversation;
// the only mutable pointer is the current-step marker carried in session
// attributes.
package flow

import (
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/slot"
)

// Mode selects how a flow decides what to ask next.
type Mode string

const (
	// ModeGraph follows a fixed step graph keyed by normalized outcomes.
	ModeGraph Mode = "graph"
	// ModeSlots re-evaluates slot requiredness after every fill and stops
	// once no required-and-unfilled slot remains.
	ModeSlots Mode = "slots"
)

// DefaultMaxRetries bounds invalid answers per step when a flow does not
// configure its own budget.
const DefaultMaxRetries = 3

// Routing describes the terminal decision of a branch: what to say and,
// when a transfer is implied, the attributes downstream telephony consumes.
type Routing struct {
	// Action is the routing hint, e.g. QueueTransfer or ReturnToMenu.
	// Empty means "answered, stay in this bot".
	Action string `yaml:"action,omitempty"`
	// Destination is the phone number, queue ARN or flow ARN to route to.
	Destination string `yaml:"destination,omitempty"`
	// Reason is the diagnostic transfer reason.
	Reason string `yaml:"reason,omitempty"`
	// Message is spoken to the caller before the branch closes.
	Message string `yaml:"message,omitempty"`
	// Fail closes the intent as Failed instead of Fulfilled, signalling the
	// NLU layer to pick another path.
	Fail bool `yaml:"fail,omitempty"`
}

// Step is one node of the conversation's decision graph.
type Step struct {
	// ID is unique within the flow. Set from the map key at load time.
	ID string `yaml:"-"`

	// Slot is the slot this step elicits and inspects.
	Slot string `yaml:"slot,omitempty"`

	// Expect selects how the answer is judged: "yesno" (the default when
	// Next has yes/no keys), "choice" (answer must match a Next key), or a
	// slot validator name such as "zip" whose passing outcome is "valid".
	Expect string `yaml:"expect,omitempty"`

	// Prompt holds the message fragments concatenated, in order, into one
	// spoken utterance. Several pieces of static script merge into a single
	// prompt this way without each being its own step.
	Prompt []string `yaml:"prompt,omitempty"`

	// RetryPrompt is spoken after an invalid answer.
	RetryPrompt string `yaml:"retry_prompt,omitempty"`

	// Terminal marks a closing step. Terminal steps have no transitions.
	Terminal bool `yaml:"terminal,omitempty"`

	// Routing is the terminal decision for this step.
	Routing *Routing `yaml:"routing,omitempty"`

	// Next maps a normalized outcome to the id of the following step.
	Next map[string]string `yaml:"next,omitempty"`

	// MaxRetries overrides the flow's retry budget for this step.
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// PromptText joins the step's prompt fragments into the spoken utterance.
func (s *Step) PromptText() string {
	return strings.Join(s.Prompt, " ")
}

// RetryPromptText falls back to the main prompt when no retry prompt is set.
func (s *Step) RetryPromptText() string {
	if s.RetryPrompt != "" {
		return s.RetryPrompt
	}
	return s.PromptText()
}

// ExpectKind resolves the effective answer discipline for this step.
func (s *Step) ExpectKind() string {
	if s.Expect != "" {
		return s.Expect
	}
	return "yesno"
}

// NextOutcomes lists the outcome keys of the step's transition map, used
// for choice matching.
func (s *Step) NextOutcomes() []string {
	out := make([]string, 0, len(s.Next))
	for outcome := range s.Next {
		out = append(out, outcome)
	}
	return out
}

// Rule is one declarative fulfillment branch: when every listed step (or
// slot, in slots mode) matches its outcome, the routing applies. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	When    map[string]string `yaml:"when"`
	Routing Routing           `yaml:"routing"`
}

// Matches reports whether every condition of the rule holds in the given
// outcome map.
func (r *Rule) Matches(outcomes map[string]string) bool {
	for key, want := range r.When {
		if outcomes[key] != want {
			return false
		}
	}
	return len(r.When) > 0
}

// VerifyConfig wires an injected verification capability into fulfillment
// and maps each of its results to a terminal routing.
type VerifyConfig struct {
	OnSuccess Routing `yaml:"on_success"`
	OnFailure Routing `yaml:"on_failure"`
	OnBlocked Routing `yaml:"on_blocked"`
}

// Utility is a small dedicated branch for an intent outside the step graph:
// either a canned answer (ElicitIntent) or a routed close.
type Utility struct {
	// Message is the canned response text.
	Message string `yaml:"message,omitempty"`
	// Repeat re-emits the active step's prompt instead of answering.
	Repeat bool `yaml:"repeat,omitempty"`
	// Routing, when set, closes the intent with these attributes instead of
	// answering in place.
	Routing *Routing `yaml:"routing,omitempty"`
}

// Meta is free-form descriptive metadata attached to a flow definition.
type Meta struct {
	Description string `mapstructure:"description"`
	Owner       string `mapstructure:"owner"`
	Version     string `mapstructure:"version"`
}

// Flow is the complete declarative definition of one bot conversation.
type Flow struct {
	// Name identifies the bot; the webhook resolves flows by bot name.
	Name string `yaml:"name"`
	// Locale the flow serves, e.g. en_US.
	Locale string `yaml:"locale,omitempty"`
	// Intent is the primary intent this flow fulfils.
	Intent string `yaml:"intent"`

	Mode Mode `yaml:"mode,omitempty"`

	// Start is the first step of a graph-mode flow. Cold start never
	// silently advances past it.
	Start string `yaml:"start,omitempty"`

	Steps map[string]*Step `yaml:"steps,omitempty"`

	// Slots is the ordered elicitation sequence of a slots-mode flow.
	Slots []slot.Definition `yaml:"slots,omitempty"`

	// Rules are the fulfillment branches, first match wins.
	Rules []Rule `yaml:"rules,omitempty"`

	// Verify wires the injected verification capability, when present.
	Verify *VerifyConfig `yaml:"verify,omitempty"`

	// Fallback is the routing applied when a retry budget is exhausted or
	// no fulfillment branch matches. Fail-safe: a transfer to an agent, not
	// a crash.
	Fallback Routing `yaml:"fallback"`

	// DefaultMaxRetries is the per-step retry budget. Zero means
	// DefaultMaxRetries (the package constant).
	DefaultMaxRetries int `yaml:"default_max_retries,omitempty"`

	// Utilities maps intent names to out-of-graph branches (repeat menu,
	// privacy notice, return to menu).
	Utilities map[string]Utility `yaml:"utilities,omitempty"`

	// Meta is loose descriptive metadata; populated by the loader.
	Meta Meta `yaml:"-"`
}

// EffectiveMode defaults to graph when unset.
func (f *Flow) EffectiveMode() Mode {
	if f.Mode == "" {
		return ModeGraph
	}
	return f.Mode
}

// First returns the designated first step.
func (f *Flow) First() (*Step, error) {
	return f.Step(f.Start)
}

// Step resolves a step id. A missing id is a configuration bug, reported
// as a ConfigError so the engine can fail closed.
func (f *Flow) Step(id string) (*Step, error) {
	s, ok := f.Steps[id]
	if !ok {
		return nil, domain.NewConfigError(f.Name, id, "step is not defined")
	}
	return s, nil
}

// Current resolves the active step from the session, defaulting to the
// first step on cold start.
func (f *Flow) Current(sess *domain.Session) (*Step, error) {
	if sess.CurrentStep == "" {
		return f.First()
	}
	return f.Step(sess.CurrentStep)
}

// Advance looks up the transition for a normalized outcome. It errors only
// when the table itself is malformed; outcome normalization guarantees the
// caller never passes anything a well-formed table lacks.
func (f *Flow) Advance(s *Step, outcome string) (string, error) {
	next, ok := s.Next[outcome]
	if !ok {
		return "", domain.NewConfigError(f.Name, s.ID, "no transition for outcome %q", outcome)
	}
	return next, nil
}

// SlotDef resolves a slot definition by name for slots-mode flows.
func (f *Flow) SlotDef(name string) (*slot.Definition, bool) {
	for i := range f.Slots {
		if f.Slots[i].Name == name {
			return &f.Slots[i], true
		}
	}
	return nil, false
}

// StepRetryBudget resolves the effective retry budget for a step.
func (f *Flow) StepRetryBudget(s *Step) int {
	if s.MaxRetries > 0 {
		return s.MaxRetries
	}
	if f.DefaultMaxRetries > 0 {
		return f.DefaultMaxRetries
	}
	return DefaultMaxRetries
}

// SlotRetryBudget resolves the effective retry budget for a slot definition.
func (f *Flow) SlotRetryBudget(d *slot.Definition) int {
	if d.MaxRetries > 0 {
		return d.MaxRetries
	}
	if f.DefaultMaxRetries > 0 {
		return f.DefaultMaxRetries
	}
	return DefaultMaxRetries
}
