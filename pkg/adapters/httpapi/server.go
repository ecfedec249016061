// Package httpapi exposes the turn engine as a JSON webhook over HTTP.
// The API is described by the embedded OpenAPI document, which is loaded
// and validated at construction so a drifting spec fails fast.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "embed"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Turner is the engine surface the HTTP adapter needs.
type Turner interface {
	Turn(ctx context.Context, in *domain.TurnInput) (*domain.TurnOutput, error)
}

// BotLister enumerates registered bots for the listing endpoint.
type BotLister interface {
	Names() []string
}

// Server handles the webhook routes.
type Server struct {
	engine Turner
	bots   BotLister
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler builds the HTTP handler. It fails when the embedded OpenAPI
// document does not validate; that is a build defect, not a runtime state.
func NewHandler(engine Turner, bots BotLister, opts ...Option) (http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}

	s := &Server{
		engine: engine,
		bots:   bots,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/v1/turn", s.handleTurn)
	r.Get("/v1/bots", s.handleBots)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	return r, nil
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in domain.TurnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed turn payload")
		return
	}

	out, err := s.engine.Turn(r.Context(), &in)
	if err != nil {
		// A configuration error means the bot is wired wrong; it must be
		// distinguishable from caller errors, which never reach here.
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrFlowNotFound) {
			status = http.StatusNotFound
		}
		s.logger.Error("turn failed", "bot", in.Bot.Name, "intent", in.IntentName(), "err", err)
		s.writeError(w, status, err.Error())
		return
	}

	s.logger.Debug("turn processed",
		"bot", in.Bot.Name,
		"source", in.InvocationSource,
		"directive", out.Directive(),
		"duration", time.Since(start))
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBots(w http.ResponseWriter, _ *http.Request) {
	names := s.bots.Names()
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
