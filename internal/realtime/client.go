// internal/realtime/client.go
package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

// inbound is a subscription control frame from the client.
type inbound struct {
	Type  string `json:"type"` // subscribe | unsubscribe
	Table string `json:"table"`
}

// NewClient attaches a websocket connection to the hub and starts its
// read/write pumps.
func NewClient(hub *Hub, conn *websocket.Conn, userID primitive.ObjectID) *Client {
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan ChangeEvent, 64),
		userID: userID,
		tables: make(map[string]bool),
	}

	hub.register <- client
	go client.writePump()
	go client.readPump()
	return client
}

func validTable(table string) bool {
	switch table {
	case TableCollections, TablePuroks, TableNotifications, TableAnnouncements:
		return true
	}
	return false
}

// readPump consumes subscription frames until the connection closes.
// Unsubscribing on teardown is the only cancellation primitive.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("realtime client read error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if !validTable(msg.Table) {
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.Subscribe(msg.Table)
		case "unsubscribe":
			c.Unsubscribe(msg.Table)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
