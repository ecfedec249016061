package flow

import (
	"fmt"
	"strings"

	"github.com/espalier-dev/espalier/pkg/slot"
)

// ValidationError aggregates every defect found in a flow definition so a
// bot author sees them all at once instead of one per load attempt.
type ValidationError struct {
	Flow     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow %q is invalid: %s", e.Flow, strings.Join(e.Problems, "; "))
}

// Validate checks the static integrity of a flow definition. A flow that
// passes cannot produce a dangling-step or unknown-validator condition at
// conversation time.
func (f *Flow) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if f.Name == "" {
		fail("missing name")
	}
	if f.Intent == "" {
		fail("missing intent")
	}

	switch f.EffectiveMode() {
	case ModeGraph:
		f.validateGraph(fail)
	case ModeSlots:
		f.validateSlots(fail)
	default:
		fail("unknown mode %q", f.Mode)
	}

	for i, rule := range f.Rules {
		if len(rule.When) == 0 {
			fail("rule %d has an empty when clause", i)
		}
		for key := range rule.When {
			if !f.knowsKey(key) {
				fail("rule %d references unknown step or slot %q", i, key)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Flow: f.Name, Problems: problems}
	}
	return nil
}

func (f *Flow) validateGraph(fail func(string, ...any)) {
	if f.Start == "" {
		fail("graph flow has no start step")
	} else if _, ok := f.Steps[f.Start]; !ok {
		fail("start step %q is not defined", f.Start)
	}
	if len(f.Steps) == 0 {
		fail("graph flow has no steps")
	}

	for id, s := range f.Steps {
		if s.Terminal {
			if len(s.Next) > 0 {
				fail("terminal step %q has transitions", id)
			}
			if len(s.Prompt) == 0 && (s.Routing == nil || s.Routing.Message == "") {
				fail("terminal step %q has nothing to say", id)
			}
			continue
		}
		if len(s.Next) == 0 {
			fail("step %q has no transitions and is not terminal", id)
		}
		if s.Slot == "" {
			fail("step %q has no bound slot", id)
		}
		if len(s.Prompt) == 0 {
			fail("step %q has no prompt", id)
		}
		for outcome, next := range s.Next {
			if outcome == "" {
				fail("step %q has an empty outcome key", id)
			}
			if _, ok := f.Steps[next]; !ok {
				fail("step %q outcome %q points at undefined step %q", id, outcome, next)
			}
		}
		if kind := s.ExpectKind(); kind != "yesno" && kind != "choice" {
			if _, ok := slot.Validator(kind); !ok {
				fail("step %q expects unknown validator %q", id, kind)
			}
		}
	}
}

func (f *Flow) validateSlots(fail func(string, ...any)) {
	if len(f.Slots) == 0 {
		fail("slots flow has no slot definitions")
	}
	seen := make(map[string]bool, len(f.Slots))
	for _, d := range f.Slots {
		if d.Name == "" {
			fail("slot definition with empty name")
			continue
		}
		if seen[d.Name] {
			fail("slot %q defined twice", d.Name)
		}
		seen[d.Name] = true
		if d.Prompt == "" {
			fail("slot %q has no prompt", d.Name)
		}
		if d.Validator != "" {
			if _, ok := slot.Validator(d.Validator); !ok {
				fail("slot %q uses unknown validator %q", d.Name, d.Validator)
			}
		}
		if d.RequiredWhen != nil && d.RequiredWhen.Slot == "" {
			fail("slot %q has a required_when with no slot", d.Name)
		}
	}
	for _, d := range f.Slots {
		if d.RequiredWhen != nil && d.RequiredWhen.Slot != "" && !seen[d.RequiredWhen.Slot] {
			fail("slot %q depends on undefined slot %q", d.Name, d.RequiredWhen.Slot)
		}
	}
}

// knowsKey reports whether a rule condition key names a step or a slot of
// this flow.
func (f *Flow) knowsKey(key string) bool {
	if _, ok := f.Steps[key]; ok {
		return true
	}
	_, ok := f.SlotDef(key)
	return ok
}
