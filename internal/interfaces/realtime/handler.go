package realtime

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	idgen "github.com/riskibarqy/cricket-odds/internal/platform/id"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
)

const defaultSendBuffer = 16

type HandlerConfig struct {
	SendBuffer     int
	AllowedOrigins []string
	IDs            idgen.Generator
}

// Handler upgrades HTTP requests into hub subscribers.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	buffer   int
	ids      idgen.Generator
	logger   *logging.Logger
}

func NewHandler(hub *Hub, cfg HandlerConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	ids := cfg.IDs
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		buffer: buffer,
		ids:    ids,
		logger: logger.Named("realtime"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.ids.NewID()
	if err != nil {
		http.Error(w, "could not allocate subscriber id", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := newClient(id, h.hub, conn, h.buffer)
	if err := h.hub.Register(c); err != nil {
		_ = conn.Close()
		return
	}
	h.logger.DebugContext(r.Context(), "subscriber connected", "subscriber_id", id, "subscribers", h.hub.Count())

	go c.writePump()
	go c.readPump()
}

// originChecker allows same-origin requests, non-browser clients and the
// configured origins. "*" allows everything.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			wildcard = true
		}
		set[strings.ToLower(origin)] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
