package simulator

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/engine"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/registry"
	"github.com/espalier-dev/espalier/pkg/slot"
)

// scriptIO feeds canned answers and records everything the bot did.
type scriptIO struct {
	answers []string
	said    []string
	events  []string
}

func (s *scriptIO) Say(msgs []domain.Message) error {
	for _, m := range msgs {
		s.said = append(s.said, m.Content)
	}
	return nil
}

func (s *scriptIO) Ask(ctx context.Context, prompt string) (string, error) {
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *scriptIO) Event(kind, detail string) error {
	s.events = append(s.events, kind)
	return nil
}

func graphFlow() *flow.Flow {
	return &flow.Flow{
		Name:   "ReplaceCard",
		Intent: "ReplaceCard",
		Start:  "zip",
		Steps: map[string]*flow.Step{
			"zip": {
				ID:          "zip",
				Slot:        "ZipCode",
				Expect:      "zip",
				Prompt:      []string{"What is your zip code?"},
				RetryPrompt: "Please say five digits.",
				Next:        map[string]string{"valid": "done"},
			},
			"done": {ID: "done", Terminal: true, Prompt: []string{"Your card is on the way."}},
		},
		Fallback: flow.Routing{Action: domain.RouteQueueTransfer, Reason: "RetryLimitReached"},
	}
}

func slotsFlow() *flow.Flow {
	return &flow.Flow{
		Name:   "ConfirmOrder",
		Intent: "ConfirmOrder",
		Mode:   flow.ModeSlots,
		Slots: []slot.Definition{
			{Name: "Confirm", Validator: "yesno", Prompt: "Shall I place the order?"},
		},
		Rules: []flow.Rule{
			{When: map[string]string{"Confirm": "yes"}, Routing: flow.Routing{Message: "Order placed."}},
			{When: map[string]string{"Confirm": "no"}, Routing: flow.Routing{Message: "Order cancelled.", Fail: true}},
		},
		Fallback: flow.Routing{Action: domain.RouteQueueTransfer, Reason: "RetryLimitReached"},
	}
}

func newEngine(t *testing.T, flows ...*flow.Flow) *engine.Engine {
	t.Helper()
	reg := registry.New()
	for _, f := range flows {
		require.NoError(t, reg.Register(f))
	}
	return engine.New(reg)
}

func TestRun_GraphConversation(t *testing.T) {
	f := graphFlow()
	userIO := &scriptIO{answers: []string{"1234", "78701"}}

	res, err := New(newEngine(t, f), f, userIO).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.IntentFulfilled, res.State)
	assert.Empty(t, res.Action)
	assert.Equal(t, 3, res.Turns)
	assert.Equal(t, []string{"close"}, userIO.events)
	assert.Equal(t, []string{
		"What is your zip code?",
		"Please say five digits.",
		"Your card is on the way.",
	}, userIO.said)
}

func TestRun_SlotsConversationDelegatesToFulfillment(t *testing.T) {
	f := slotsFlow()
	userIO := &scriptIO{answers: []string{"yeah"}}

	res, err := New(newEngine(t, f), f, userIO).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.IntentFulfilled, res.State)
	assert.Equal(t, []string{"delegate", "close"}, userIO.events)
	assert.Contains(t, userIO.said, "Order placed.")
}

func TestRun_FailedClose(t *testing.T) {
	f := slotsFlow()
	userIO := &scriptIO{answers: []string{"no"}}

	res, err := New(newEngine(t, f), f, userIO).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFailed, res.State)
}

func TestRun_InputRunsOut(t *testing.T) {
	f := graphFlow()
	userIO := &scriptIO{}

	res, err := New(newEngine(t, f), f, userIO).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Turns)
	assert.Zero(t, res.State)
}

func TestRun_MaxTurnsGuard(t *testing.T) {
	f := graphFlow()
	// An answer that never validates keeps the conversation looping until
	// the fallback would fire; cap it below that point.
	userIO := &scriptIO{answers: []string{"bad", "bad", "bad", "bad", "bad"}}

	_, err := New(newEngine(t, f), f, userIO, WithMaxTurns(2)).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not close")
}
