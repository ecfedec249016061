// Package response holds the pure constructors for the four canonical turn
// directives. None of them performs I/O: they only shape the value returned
// to the NLU service. Any transfer or paging side effect happens downstream,
// keyed off the action/destination attributes carried in the session bag.
package response

import "github.com/espalier-dev/espalier/pkg/domain"

// Delegate defers control back to the NLU engine with no message.
func Delegate(intent *domain.Intent, attrs map[string]string) *domain.TurnOutput {
	return &domain.TurnOutput{
		SessionState: domain.SessionState{
			DialogAction:      &domain.DialogAction{Type: domain.ActionDelegate},
			Intent:            intent.Clone(),
			SessionAttributes: cloneAttrs(attrs),
		},
	}
}

// ElicitSlot asks for a specific named slot. Previously filled slot values
// are preserved; use ClearSlot first for any slot invalidated this turn.
func ElicitSlot(intent *domain.Intent, attrs map[string]string, slotName string, msgs ...domain.Message) *domain.TurnOutput {
	cloned := intent.Clone()
	if cloned != nil {
		cloned.State = domain.IntentInProgress
	}
	return &domain.TurnOutput{
		SessionState: domain.SessionState{
			DialogAction:      &domain.DialogAction{Type: domain.ActionElicitSlot, SlotToElicit: slotName},
			Intent:            cloned,
			SessionAttributes: cloneAttrs(attrs),
		},
		Messages: msgs,
	}
}

// ElicitIntent ends the current intent's slot filling and asks the caller
// what they want next; used for post-answer follow-up menus.
func ElicitIntent(attrs map[string]string, msgs ...domain.Message) *domain.TurnOutput {
	return &domain.TurnOutput{
		SessionState: domain.SessionState{
			DialogAction:      &domain.DialogAction{Type: domain.ActionElicitIntent},
			SessionAttributes: cloneAttrs(attrs),
		},
		Messages: msgs,
	}
}

// Close terminates the intent in the given state. Fulfilled plus a
// destination attribute signals a transfer; Fulfilled without one means
// "answered, stay in this bot"; Failed tells the NLU layer to pick a
// different path.
func Close(state domain.IntentState, intentName string, attrs map[string]string, msgs ...domain.Message) *domain.TurnOutput {
	return &domain.TurnOutput{
		SessionState: domain.SessionState{
			DialogAction:      &domain.DialogAction{Type: domain.ActionClose},
			Intent:            &domain.Intent{Name: intentName, State: state},
			SessionAttributes: cloneAttrs(attrs),
		},
		Messages: msgs,
	}
}

// ClearSlot returns a copy of the intent with one slot unfilled, so the
// NLU layer does not treat an invalidated answer as already given.
func ClearSlot(intent *domain.Intent, slotName string) *domain.Intent {
	cloned := intent.Clone()
	if cloned == nil {
		return nil
	}
	if cloned.Slots == nil {
		cloned.Slots = make(map[string]*domain.SlotValue)
	}
	cloned.Slots[slotName] = nil
	return cloned
}

// cloneAttrs copies the attribute bag so a directive never aliases the
// session map the controllers keep mutating.
func cloneAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
