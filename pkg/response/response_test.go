package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
)

func intentFixture() *domain.Intent {
	return &domain.Intent{
		Name:  "ReplaceCard",
		Slots: map[string]*domain.SlotValue{"ZipCode": domain.NewSlotValue("12345")},
	}
}

func TestDelegate(t *testing.T) {
	out := Delegate(intentFixture(), map[string]string{"current_step": "zip"})

	require.NotNil(t, out.SessionState.DialogAction)
	assert.Equal(t, domain.ActionDelegate, out.SessionState.DialogAction.Type)
	assert.Equal(t, "ReplaceCard", out.SessionState.Intent.Name)
	assert.Empty(t, out.Messages)
}

func TestElicitSlot(t *testing.T) {
	out := ElicitSlot(intentFixture(), nil, "Confirm", domain.Plain("Mail it to the address on file?"))

	action := out.SessionState.DialogAction
	require.NotNil(t, action)
	assert.Equal(t, domain.ActionElicitSlot, action.Type)
	assert.Equal(t, "Confirm", action.SlotToElicit)
	assert.Equal(t, domain.IntentInProgress, out.SessionState.Intent.State)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "Mail it to the address on file?", out.Messages[0].Content)

	// Slots filled on earlier turns survive.
	value, ok := out.SessionState.Intent.Slot("ZipCode")
	require.True(t, ok)
	assert.Equal(t, "12345", value)
}

func TestElicitIntent(t *testing.T) {
	out := ElicitIntent(map[string]string{"crm_case": "case-4711"}, domain.Plain("Anything else?"))

	require.NotNil(t, out.SessionState.DialogAction)
	assert.Equal(t, domain.ActionElicitIntent, out.SessionState.DialogAction.Type)
	assert.Nil(t, out.SessionState.Intent)
	assert.Equal(t, "case-4711", out.SessionState.SessionAttributes["crm_case"])
}

func TestClose(t *testing.T) {
	out := Close(domain.IntentFulfilled, "EnrollMedicare", nil, domain.Plain("You are enrolled."))

	require.NotNil(t, out.SessionState.DialogAction)
	assert.Equal(t, domain.ActionClose, out.SessionState.DialogAction.Type)
	assert.Equal(t, domain.IntentFulfilled, out.SessionState.Intent.State)
	assert.Equal(t, "EnrollMedicare", out.SessionState.Intent.Name)
}

func TestClearSlot(t *testing.T) {
	intent := intentFixture()
	cleared := ClearSlot(intent, "ZipCode")

	_, ok := cleared.Slot("ZipCode")
	assert.False(t, ok)

	// The caller's intent is untouched.
	value, ok := intent.Slot("ZipCode")
	require.True(t, ok)
	assert.Equal(t, "12345", value)
}

func TestAttrsNeverAliased(t *testing.T) {
	attrs := map[string]string{"retries": "1"}
	out := Delegate(intentFixture(), attrs)

	attrs["retries"] = "2"
	assert.Equal(t, "1", out.SessionState.SessionAttributes["retries"])

	// Nil in, empty map out: the wire shape always carries the bag.
	assert.NotNil(t, ElicitIntent(nil).SessionState.SessionAttributes)
}
