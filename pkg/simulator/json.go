package simulator

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// JSONIO is the headless handler: one JSON object per line on the writer,
// one caller answer per line on the reader. Lines may be JSON strings or
// raw text.
type JSONIO struct {
	dec *json.Decoder
	enc *json.Encoder
}

// NewJSONIO creates a JSON-lines IO handler.
func NewJSONIO(r io.Reader, w io.Writer) *JSONIO {
	return &JSONIO{
		dec: json.NewDecoder(r),
		enc: json.NewEncoder(w),
	}
}

type jsonEvent struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages,omitempty"`
	Slot     string           `json:"slot,omitempty"`
	Detail   string           `json:"detail,omitempty"`
}

// Say emits the bot's messages as one event line.
func (j *JSONIO) Say(msgs []domain.Message) error {
	return j.enc.Encode(jsonEvent{Type: "say", Messages: msgs})
}

// Ask emits an input request and reads one answer line.
func (j *JSONIO) Ask(ctx context.Context, prompt string) (string, error) {
	if err := j.enc.Encode(jsonEvent{Type: "ask", Slot: prompt}); err != nil {
		return "", err
	}
	var raw json.RawMessage
	if err := j.dec.Decode(&raw); err != nil {
		return "", err
	}
	var answer string
	if err := json.Unmarshal(raw, &answer); err == nil {
		return answer, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// Event emits an out-of-band event line.
func (j *JSONIO) Event(kind, detail string) error {
	return j.enc.Encode(jsonEvent{Type: kind, Detail: detail})
}
