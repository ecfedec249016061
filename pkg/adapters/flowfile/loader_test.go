package flowfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/flow"
)

const enrollYAML = `
name: EnrollMedicare
intent: EnrollMedicare
start: terms
meta:
  description: Medicare enrollment
  owner: ivr-team
  version: "2"
steps:
  terms:
    slot: AcceptTerms
    prompt:
      - "Enrollment means you agree to the plan terms."
      - "Do you accept?"
    next:
      "yes": enrolled
      "no": declined
  enrolled:
    terminal: true
    prompt:
      - "You are enrolled. A welcome packet is on its way."
  declined:
    terminal: true
    routing:
      action: QueueTransfer
      reason: TermsDeclined
      message: "Let me connect you with an agent to talk it over."
fallback:
  action: QueueTransfer
  reason: RetryLimitReached
`

const identityYAML = `
name: VerifyIdentity
intent: VerifyIdentity
mode: slots
slots:
  - name: ZipCode
    validator: zip
    prompt: "What is your zip code?"
fallback:
  action: QueueTransfer
  reason: RetryLimitReached
`

func writeFlow(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "enroll.yaml", enrollYAML)
	writeFlow(t, dir, "identity.yml", identityYAML)
	writeFlow(t, dir, "README.md", "not a flow")

	flows, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, flows, 2)

	// Lexical file order.
	assert.Equal(t, "EnrollMedicare", flows[0].Name)
	assert.Equal(t, "VerifyIdentity", flows[1].Name)
}

func TestLoader_BrokenFileFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "enroll.yaml", enrollYAML)
	writeFlow(t, dir, "broken.yaml", "name: Broken\nintent: Broken\nstart: missing\n")

	_, err := New(dir).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoader_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nowhere")).Load(context.Background())
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(enrollYAML), "enroll.yaml")
	require.NoError(t, err)

	assert.Equal(t, "EnrollMedicare", f.Name)
	assert.Equal(t, flow.ModeGraph, f.EffectiveMode())
	assert.Equal(t, "Medicare enrollment", f.Meta.Description)
	assert.Equal(t, "ivr-team", f.Meta.Owner)

	// Step ids come from the map keys.
	step, err := f.Step("terms")
	require.NoError(t, err)
	assert.Equal(t, "terms", step.ID)
	assert.Equal(t, "Enrollment means you agree to the plan terms. Do you accept?", step.PromptText())
	assert.Equal(t, "enrolled", step.Next["yes"])
}

func TestParse_RejectsInvalidFlow(t *testing.T) {
	_, err := Parse([]byte("name: Broken\nintent: Broken\nstart: nowhere\n"), "broken.yaml")
	require.Error(t, err)

	var verr *flow.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("{not yaml"), "garbage.yaml")
	assert.Error(t, err)
}
