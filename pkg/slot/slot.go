// Package slot models the pieces of information a conversation collects:
// definitions with retry budgets and prompts, format validators, and the
// yes/no normalization shared by every confirm-style step.
package slot

// RequiredFunc computes conditional requiredness from the values collected
// so far. A slot may be required only when an earlier answer was "yes".
type RequiredFunc func(filled map[string]string) bool

// Definition describes one slot to elicit. Fill state lives in the turn
// input, never here; definitions are static per-bot configuration.
type Definition struct {
	// Name is the slot name as the NLU service reports it.
	Name string `yaml:"name"`

	// Optional marks a slot that is never required on its own.
	Optional bool `yaml:"optional,omitempty"`

	// Validator names the format check applied to a filled value.
	// Empty means "any".
	Validator string `yaml:"validator,omitempty"`

	// MaxRetries bounds consecutive invalid answers before the flow's
	// fallback route fires. Zero means the flow default applies.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// Prompt is spoken when the slot is first elicited.
	Prompt string `yaml:"prompt"`

	// RetryPrompt is spoken after an invalid answer. Empty falls back to Prompt.
	RetryPrompt string `yaml:"retry_prompt,omitempty"`

	// AllowInterrupt lets the caller barge in over the prompt.
	AllowInterrupt bool `yaml:"allow_interrupt,omitempty"`

	// RequiredWhen makes requiredness conditional on another slot's
	// normalized answer, e.g. "ask MailingCountry only after a yes on
	// ForeignAddress". Nil plus Optional=false means always required.
	RequiredWhen *Condition `yaml:"required_when,omitempty"`
}

// Condition gates a slot's requiredness on another slot's normalized value.
type Condition struct {
	Slot string `yaml:"slot"`
	Is   string `yaml:"is"`
}

// IsRequired evaluates requiredness against the values collected so far.
func (d *Definition) IsRequired(filled map[string]string) bool {
	if d.Optional {
		return false
	}
	if d.RequiredWhen == nil {
		return true
	}
	value, ok := filled[d.RequiredWhen.Slot]
	if !ok {
		return false
	}
	want := d.RequiredWhen.Is
	if want == string(OutcomeYes) || want == string(OutcomeNo) {
		return string(Normalize(value)) == want
	}
	return value == want
}

// Validate applies the definition's named validator to a filled value.
// Unknown validator names accept everything; flow validation rejects them
// before a conversation can reach this point.
func (d *Definition) Validate(value string) Result {
	name := d.Validator
	if name == "" {
		name = "any"
	}
	v, ok := Validator(name)
	if !ok {
		return OK()
	}
	return v(value)
}

// RetryPromptText returns the retry prompt, falling back to the main prompt.
func (d *Definition) RetryPromptText() string {
	if d.RetryPrompt != "" {
		return d.RetryPrompt
	}
	return d.Prompt
}
