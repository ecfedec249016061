package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	sess := DecodeSession(map[string]string{
		AttrCurrentStep: "terms",
		AttrRetries:     "2",
		AttrOutcomes:    `{"current_year":"yes"}`,
		"caller_ani":    "+15125550100", // not ours, must survive
		"crm_case":      "case-4711",
	})

	assert.Equal(t, "terms", sess.CurrentStep)
	assert.Equal(t, 2, sess.Retries)
	assert.Equal(t, "yes", sess.Outcomes["current_year"])

	encoded := sess.Encode()
	assert.Equal(t, "+15125550100", encoded["caller_ani"])
	assert.Equal(t, "case-4711", encoded["crm_case"])
	assert.Equal(t, "terms", encoded[AttrCurrentStep])
	assert.Equal(t, "2", encoded[AttrRetries])
	assert.JSONEq(t, `{"current_year":"yes"}`, encoded[AttrOutcomes])
}

func TestDecodeSession_Empty(t *testing.T) {
	sess := DecodeSession(nil)
	require.NotNil(t, sess)
	assert.Empty(t, sess.CurrentStep)
	assert.Zero(t, sess.Retries)
	assert.Empty(t, sess.Outcomes)

	// Nothing set means nothing encoded.
	assert.Empty(t, sess.Encode())
}

func TestDecodeSession_CorruptValues(t *testing.T) {
	sess := DecodeSession(map[string]string{
		AttrOutcomes: "{not json",
		AttrRetries:  "many",
	})
	assert.Empty(t, sess.Outcomes)
	assert.Zero(t, sess.Retries)
}

func TestSession_SetRoute(t *testing.T) {
	sess := DecodeSession(nil)
	sess.SetRoute(RouteQueueTransfer, "arn:queue:agents", "TermsDeclined")

	encoded := sess.Encode()
	assert.Equal(t, RouteQueueTransfer, encoded[AttrAction])
	assert.Equal(t, "arn:queue:agents", encoded[AttrDestination])
	assert.Equal(t, "TermsDeclined", encoded[AttrReason])
}

func TestIntent_CloneIsolation(t *testing.T) {
	original := &Intent{
		Name:  "ReplaceCard",
		Slots: map[string]*SlotValue{"ZipCode": NewSlotValue("12345")},
	}
	cloned := original.Clone()
	cloned.Slots["ZipCode"] = nil

	value, ok := original.Slot("ZipCode")
	require.True(t, ok)
	assert.Equal(t, "12345", value)
}
