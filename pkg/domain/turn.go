package domain

// InvocationSource identifies which hook the NLU service is invoking.
type InvocationSource string

const (
	// SourceDialog is the per-turn hook fired while slots are still being collected.
	SourceDialog InvocationSource = "DialogCodeHook"
	// SourceFulfillment is the hook fired once collection is complete.
	SourceFulfillment InvocationSource = "FulfillmentCodeHook"
)

// DialogActionType enumerates the directive kinds the engine can return.
type DialogActionType string

const (
	ActionDelegate     DialogActionType = "Delegate"
	ActionElicitSlot   DialogActionType = "ElicitSlot"
	ActionElicitIntent DialogActionType = "ElicitIntent"
	ActionClose        DialogActionType = "Close"
)

// IntentState is the terminal state stamped on a closed intent.
type IntentState string

const (
	IntentFulfilled  IntentState = "Fulfilled"
	IntentFailed     IntentState = "Failed"
	IntentInProgress IntentState = "InProgress"
)

// ContentType distinguishes plain spoken text from SSML markup.
type ContentType string

const (
	ContentPlainText ContentType = "PlainText"
	ContentSSML      ContentType = "SSML"
)

// SlotValue is the interpreted value the NLU service resolved for one slot.
// A nil *SlotValue in the slots map means the slot is unfilled.
type SlotValue struct {
	Value SlotValueContent `json:"value"`
}

// SlotValueContent carries the resolved and raw forms of a slot value.
type SlotValueContent struct {
	InterpretedValue string `json:"interpretedValue"`
	OriginalValue    string `json:"originalValue,omitempty"`
}

// NewSlotValue builds a filled slot value from an interpreted string.
func NewSlotValue(interpreted string) *SlotValue {
	return &SlotValue{Value: SlotValueContent{InterpretedValue: interpreted}}
}

// Intent is the caller's recognized goal plus its slot fill state.
type Intent struct {
	Name  string                `json:"name"`
	Slots map[string]*SlotValue `json:"slots,omitempty"`
	State IntentState           `json:"state,omitempty"`
}

// Clone returns a deep copy safe for mutation by the response builder.
func (i *Intent) Clone() *Intent {
	if i == nil {
		return nil
	}
	out := &Intent{Name: i.Name, State: i.State}
	if i.Slots != nil {
		out.Slots = make(map[string]*SlotValue, len(i.Slots))
		for name, v := range i.Slots {
			if v == nil {
				out.Slots[name] = nil
				continue
			}
			cp := *v
			out.Slots[name] = &cp
		}
	}
	return out
}

// Slot returns the interpreted value of a slot and whether it is filled.
func (i *Intent) Slot(name string) (string, bool) {
	if i == nil {
		return "", false
	}
	v, ok := i.Slots[name]
	if !ok || v == nil || v.Value.InterpretedValue == "" {
		return "", false
	}
	return v.Value.InterpretedValue, true
}

// DialogAction tells the NLU service what to do next.
type DialogAction struct {
	Type         DialogActionType `json:"type"`
	SlotToElicit string           `json:"slotToElicit,omitempty"`
}

// SessionState is the stateful envelope exchanged with the NLU service.
type SessionState struct {
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
	Intent            *Intent           `json:"intent,omitempty"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

// Bot identifies the bot and locale the NLU service resolved for this call.
type Bot struct {
	Name     string `json:"name"`
	LocaleID string `json:"localeId"`
}

// TurnInput is the immutable per-invocation record handed in by the NLU
// service. The engine reads it and never mutates it.
type TurnInput struct {
	InvocationSource InvocationSource `json:"invocationSource"`
	SessionID        string           `json:"sessionId,omitempty"`
	SessionState     SessionState     `json:"sessionState"`
	Bot              Bot              `json:"bot"`
	InputTranscript  string           `json:"inputTranscript,omitempty"`
}

// IntentName returns the current intent's name, or "" when absent.
func (t *TurnInput) IntentName() string {
	if t.SessionState.Intent == nil {
		return ""
	}
	return t.SessionState.Intent.Name
}

// Slot returns the interpreted value of a slot on the current intent.
func (t *TurnInput) Slot(name string) (string, bool) {
	return t.SessionState.Intent.Slot(name)
}

// Message is one spoken fragment of the response.
type Message struct {
	ContentType ContentType `json:"contentType"`
	Content     string      `json:"content"`
}

// Plain builds a PlainText message.
func Plain(content string) Message {
	return Message{ContentType: ContentPlainText, Content: content}
}

// SSML builds an SSML message.
func SSML(content string) Message {
	return Message{ContentType: ContentSSML, Content: content}
}

// TurnOutput is the directive returned to the NLU service. It is built
// fresh every turn and never persisted.
type TurnOutput struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages,omitempty"`
}

// Directive returns the dialog action type of this output.
func (t *TurnOutput) Directive() DialogActionType {
	if t.SessionState.DialogAction == nil {
		return ""
	}
	return t.SessionState.DialogAction.Type
}
