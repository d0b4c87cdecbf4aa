package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"typerace/internal/pkg/auth/jwt"
	"typerace/internal/pkg/logx"
)

// HandleWebSocket upgrades the request and hands the connection to the hub.
// A valid identity token on the upgrade request binds the connection to that
// user; without one the connection must prove itself in authenticate.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tokenUserID string
		if identity := jwt.GetPayloadFromContext(r); identity != nil {
			tokenUserID = identity.UserID
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established", "user_id", tokenUserID, "ip", logx.AnonymizeIP(r.RemoteAddr))

		deps.Hub.Serve(conn, tokenUserID)
	}
}
