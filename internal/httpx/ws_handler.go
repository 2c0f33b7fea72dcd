package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ariefcatur/go-food-orders/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// origin checks are handled by the fronting proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades staff clients onto the push channel.
type WSHandler struct {
	Registry *notify.Registry
}

func (h *WSHandler) Register(r *chi.Mux) {
	r.Get("/staff/ws", h.subscribe)
}

func (h *WSHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	sid := staffID(r)
	if sid == "" {
		unauthorized(w)
		return
	}

	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already wrote the error response
	}

	conn, err := h.Registry.Register(r.Context(), sid, sock)
	if err != nil {
		slog.WarnContext(r.Context(), "ws register failed", "staff_id", sid, "err", err)
		_ = sock.Close()
		return
	}
	defer h.Registry.Unregister(sid, conn)

	// read loop exists only to detect disconnect; clients do not send data
	for {
		if _, _, err := sock.ReadMessage(); err != nil {
			return
		}
	}
}
