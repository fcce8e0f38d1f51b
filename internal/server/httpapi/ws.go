package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebsocket upgrades an authenticated request and hands the
// connection to the hub. The bearer token was already validated by
// authMiddleware.
func (r *Router) handleWebsocket(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn(req.Context(), "websocket upgrade failed", "error", err)
		return
	}

	r.hub.Register(userID, conn)
	go r.hub.HandleConnection(conn)
}
