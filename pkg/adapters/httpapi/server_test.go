package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/engine"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/registry"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(&flow.Flow{
		Name:   "ReplaceCard",
		Intent: "ReplaceCard",
		Start:  "zip",
		Steps: map[string]*flow.Step{
			"zip": {
				ID:     "zip",
				Slot:   "ZipCode",
				Expect: "zip",
				Prompt: []string{"What is your zip code?"},
				Next:   map[string]string{"valid": "done"},
			},
			"done": {ID: "done", Terminal: true, Prompt: []string{"All set."}},
		},
		Fallback: flow.Routing{Action: domain.RouteQueueTransfer, Reason: "RetryLimitReached"},
	}))

	h, err := NewHandler(engine.New(reg), reg)
	require.NoError(t, err)
	return h
}

func turnBody(t *testing.T, in *domain.TurnInput) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(in))
	return &buf
}

func TestHandleTurn(t *testing.T) {
	h := testHandler(t)

	in := &domain.TurnInput{
		InvocationSource: domain.SourceDialog,
		Bot:              domain.Bot{Name: "ReplaceCard", LocaleID: "en_US"},
		SessionState: domain.SessionState{
			Intent: &domain.Intent{Name: "ReplaceCard"},
		},
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/turn", turnBody(t, in)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out domain.TurnOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, domain.ActionElicitSlot, out.Directive())
	assert.Equal(t, "ZipCode", out.SessionState.DialogAction.SlotToElicit)
}

func TestHandleTurn_MalformedPayload(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/turn", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed turn payload")
}

func TestHandleTurn_UnknownBot(t *testing.T) {
	h := testHandler(t)

	in := &domain.TurnInput{
		InvocationSource: domain.SourceDialog,
		Bot:              domain.Bot{Name: "NoSuchBot"},
		SessionState:     domain.SessionState{Intent: &domain.Intent{Name: "Whatever"}},
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/turn", turnBody(t, in)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTurn_BadInvocationSource(t *testing.T) {
	h := testHandler(t)

	in := &domain.TurnInput{
		InvocationSource: "ChitchatHook",
		Bot:              domain.Bot{Name: "ReplaceCard"},
		SessionState:     domain.SessionState{Intent: &domain.Intent{Name: "ReplaceCard"}},
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/turn", turnBody(t, in)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleBots(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bots", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"ReplaceCard"}, names)
}

func TestHealthz(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/turn")
}

var _ Turner = (*engine.Engine)(nil)
