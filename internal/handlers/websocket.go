// internal/handlers/websocket.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/centmarde/Eco-Barangay/internal/realtime"
	"github.com/centmarde/Eco-Barangay/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS layer.
		return true
	},
}

// WebSocketHandler upgrades authenticated connections into realtime
// subscribers. Browsers cannot set headers on websocket dials, so the
// token is also accepted as a query parameter.
type WebSocketHandler struct {
	hub        *realtime.Hub
	jwtManager *auth.JWTManager
	log        *logrus.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, jwtManager *auth.JWTManager, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtManager: jwtManager, log: log}
}

func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	realtime.NewClient(h.hub, conn, claims.UserID)
	h.log.WithField("user_id", claims.UserID.Hex()).Debug("Realtime client connected")
}

// Status reports the live connection count.
func (h *WebSocketHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connections": h.hub.ConnectionsCount()})
}
