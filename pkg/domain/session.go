package domain

import (
	"encoding/json"
	"strconv"
)

// Session attribute keys owned by this engine. Every other key found in the
// incoming bag is opaque caller state and is passed through verbatim.
const (
	// AttrCurrentStep marks the active step of the flow's step graph.
	AttrCurrentStep = "current_step"
	// AttrRetries counts consecutive invalid answers for the active step.
	AttrRetries = "retries"
	// AttrOutcomes holds the step-outcomes map, JSON-encoded into a single
	// value because the transport only supports string attributes.
	AttrOutcomes = "step_outcomes"
	// AttrAction is the routing hint consumed by the telephony layer.
	AttrAction = "action"
	// AttrDestination is the transfer target: phone number, queue ARN or flow ARN.
	AttrDestination = "destination"
	// AttrReason is a diagnostic string explaining a transfer.
	AttrReason = "reason"
)

// Routing hints written to AttrAction.
const (
	RouteQueueTransfer = "QueueTransfer"
	RoutePhoneTransfer = "PhoneTransfer"
	RouteReturnToMenu  = "ReturnToMenu"
)

// Session is the decoded form of the engine-owned session attributes.
// The wire form stays flat string key/value pairs; Decode and Encode are the
// only places that cross that boundary.
type Session struct {
	CurrentStep string
	Retries     int
	Outcomes    map[string]string

	Action      string
	Destination string
	Reason      string

	// Extra preserves attribute keys this engine does not recognize.
	Extra map[string]string
}

// DecodeSession parses the incoming attribute bag. Unknown keys land in
// Extra untouched. A corrupt outcomes value is treated as empty rather than
// failing the turn; it is rewritten on the next encode.
func DecodeSession(attrs map[string]string) *Session {
	s := &Session{
		Outcomes: make(map[string]string),
		Extra:    make(map[string]string),
	}
	for key, value := range attrs {
		switch key {
		case AttrCurrentStep:
			s.CurrentStep = value
		case AttrRetries:
			s.Retries = parseRetries(value)
		case AttrOutcomes:
			var decoded map[string]string
			if err := json.Unmarshal([]byte(value), &decoded); err == nil && decoded != nil {
				s.Outcomes = decoded
			}
		case AttrAction:
			s.Action = value
		case AttrDestination:
			s.Destination = value
		case AttrReason:
			s.Reason = value
		default:
			s.Extra[key] = value
		}
	}
	return s
}

// Encode serializes the session back to the flat attribute bag, Extra keys
// included. Empty engine-owned values are omitted so the bag stays minimal.
func (s *Session) Encode() map[string]string {
	attrs := make(map[string]string, len(s.Extra)+6)
	for key, value := range s.Extra {
		attrs[key] = value
	}
	if s.CurrentStep != "" {
		attrs[AttrCurrentStep] = s.CurrentStep
	}
	if s.Retries > 0 {
		attrs[AttrRetries] = strconv.Itoa(s.Retries)
	}
	if len(s.Outcomes) > 0 {
		encoded, err := json.Marshal(s.Outcomes)
		if err == nil {
			attrs[AttrOutcomes] = string(encoded)
		}
	}
	if s.Action != "" {
		attrs[AttrAction] = s.Action
	}
	if s.Destination != "" {
		attrs[AttrDestination] = s.Destination
	}
	if s.Reason != "" {
		attrs[AttrReason] = s.Reason
	}
	return attrs
}

// SetRoute stamps the routing attributes consumed by downstream telephony.
func (s *Session) SetRoute(action, destination, reason string) {
	s.Action = action
	s.Destination = destination
	s.Reason = reason
}

func parseRetries(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
