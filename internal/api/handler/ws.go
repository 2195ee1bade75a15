package handler

import (
	"net/http"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/notifyhub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the client with the
// notification hub. Runs behind RequireAuth.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &notifyhub.WebSocketClient{
		Hub:    h.Hub,
		UserID: user.ID,
		Conn:   conn,
		Send:   make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
