package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storyteller/internal/alexa"
	"storyteller/internal/catalog"
	"storyteller/internal/config"
	"storyteller/internal/dispatch"
	"storyteller/internal/logging"
	"storyteller/internal/observe"
	"storyteller/internal/session"
)

const maxSkillBody = 1 << 20

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	config     *config.Config
	dispatcher *dispatch.Dispatcher
	catalog    *catalog.Catalog
	hub        *PlaybackHub
	sessions   Pinger
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewHandlers wires the HTTP surface. hub and sessions may be nil.
func NewHandlers(cfg *config.Config, d *dispatch.Dispatcher, cat *catalog.Catalog, hub *PlaybackHub, sessions Pinger, logger *zap.Logger) *Handlers {
	return &Handlers{
		config:     cfg,
		dispatcher: d,
		catalog:    cat,
		hub:        hub,
		sessions:   sessions,
		logger:     logger.Named("web"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.Server.AllowOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// NewRouter builds the chi router for the skill endpoint, the JSON API, the
// playback feed and metrics.
func NewRouter(h *Handlers, metrics *observe.Metrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(observe.Middleware(metrics, h.logger))

	r.Get("/health", h.HealthCheck)
	r.Post("/skill", h.Skill)

	if h.hub != nil {
		r.Get("/ws/playback", h.PlaybackFeed)
	}

	if h.config.Metrics.Enabled {
		r.Handle(h.config.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.config.Server.AllowOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", observe.RequestIDHeader},
			ExposedHeaders: []string{observe.RequestIDHeader},
			MaxAge:         300,
		}))
		r.Get("/stories", h.ListStories)
		r.Get("/stories/{story_id}", h.GetStory)
	})

	return r
}

// Skill handles one platform request. Platform-level failures are still
// answered with 200 so the conversation survives; only malformed or
// misaddressed requests are rejected.
func (h *Handlers) Skill(w http.ResponseWriter, r *http.Request) {
	log := logging.WithContext(r.Context(), h.logger)

	var env alexa.RequestEnvelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSkillBody)).Decode(&env); err != nil {
		log.Warn("invalid skill request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if want := h.config.Skill.ApplicationID; want != "" && env.ApplicationID() != want {
		log.Warn("application id mismatch", zap.String("application_id", env.ApplicationID()))
		writeError(w, http.StatusForbidden, "Unknown application")
		return
	}

	evt, err := alexa.Normalize(&env)
	if err != nil {
		log.Info("ignoring request", zap.String("type", env.Request.Type), zap.Error(err))
		h.writeSkill(w, log, alexa.ResponseEnvelope{Version: alexa.Version})
		return
	}

	d := h.dispatcher
	var attrs *session.AttributeStore
	if h.config.Session.Backend == config.SessionBackendAttributes {
		attrs = session.NewAttributeStore(env.Attributes())
		d = d.WithStore(attrs)
	}

	resp := d.Dispatch(r.Context(), evt)

	var echo map[string]any
	if attrs != nil {
		echo = attrs.Attributes()
	}
	h.writeSkill(w, log, alexa.Render(env.Request.Type, resp, echo))
}

func (h *Handlers) writeSkill(w http.ResponseWriter, log *zap.Logger, env alexa.ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	if err := alexa.Encode(w, env); err != nil {
		log.Error("failed to write skill response", zap.Error(err))
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string    `json:"status"`
	Service  string    `json:"service"`
	Stories  int       `json:"stories"`
	Handled  int64     `json:"handled"`
	Feed     *HubStats `json:"feed,omitempty"`
	Sessions string    `json:"sessions"`
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Service:  "storyteller",
		Stories:  h.catalog.Len(),
		Handled:  h.dispatcher.Handled(),
		Sessions: h.config.Session.Backend,
	}
	if h.hub != nil {
		stats := h.hub.Stats()
		resp.Feed = &stats
	}

	status := http.StatusOK
	if h.sessions != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.sessions.Ping(ctx); err != nil {
			h.logger.Warn("session store unhealthy", zap.Error(err))
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// StoryResponse is the JSON API envelope for catalog reads.
type StoryResponse struct {
	Success bool            `json:"success"`
	Story   *catalog.Story  `json:"story,omitempty"`
	Stories []catalog.Story `json:"stories,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (h *Handlers) ListStories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StoryResponse{Success: true, Stories: h.catalog.Stories()})
}

func (h *Handlers) GetStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "story_id")
	story, ok := h.catalog.Story(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	writeJSON(w, http.StatusOK, StoryResponse{Success: true, Story: &story})
}

// PlaybackFeed upgrades to a websocket that receives every dispatched event.
func (h *Handlers) PlaybackFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  h.hub,
	}

	welcome, _ := json.Marshal(map[string]any{
		"type": "connected",
		"id":   client.ID,
		"msg":  "Connected to playback feed",
		"time": time.Now().Unix(),
	})
	if !h.hub.attach(client, welcome) {
		client.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, StoryResponse{Success: false, Error: msg})
}
