// internal/realtime/hub.go
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Change-feed actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Tables clients may subscribe to.
const (
	TableCollections   = "collections"
	TablePuroks        = "puroks"
	TableNotifications = "notifications"
	TableAnnouncements = "announcements"
)

// ChangeEvent is one row mutation pushed to subscribers. Before/After
// are row snapshots; Version lets the client discard events older than
// the state it already holds.
type ChangeEvent struct {
	Table   string      `json:"table"`
	Action  string      `json:"action"`
	Before  interface{} `json:"before,omitempty"`
	After   interface{} `json:"after,omitempty"`
	Version int64       `json:"version,omitempty"`

	// Recipient narrows delivery to one user; zero means broadcast to
	// every subscriber of the table.
	Recipient primitive.ObjectID `json:"-"`
}

// Client is one websocket consumer with a set of table subscriptions.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan ChangeEvent
	userID primitive.ObjectID

	mu     sync.RWMutex
	tables map[string]bool
}

// Subscribe adds a table to the client's subscription set.
func (c *Client) Subscribe(table string) {
	c.mu.Lock()
	c.tables[table] = true
	c.mu.Unlock()
}

// Unsubscribe removes a table from the client's subscription set.
func (c *Client) Unsubscribe(table string) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()
}

func (c *Client) subscribed(table string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[table]
}

// Hub fans change events out to subscribed websocket clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan ChangeEvent
	done       chan struct{}

	mutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan ChangeEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and event delivery until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case event := <-h.events:
			h.deliver(event)

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) deliver(event ChangeEvent) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if !client.subscribed(event.Table) {
			continue
		}
		if !event.Recipient.IsZero() && client.userID != event.Recipient {
			continue
		}
		select {
		case client.send <- event:
		default:
			// Slow consumer: drop the event rather than block the hub.
			logrus.WithField("user_id", client.userID.Hex()).Warn("realtime client buffer full, dropping event")
		}
	}
}

// Publish queues a change event for delivery. Never blocks callers.
func (h *Hub) Publish(event ChangeEvent) {
	select {
	case h.events <- event:
	default:
		logrus.WithField("table", event.Table).Warn("realtime event queue full, dropping event")
	}
}

func (h *Hub) Shutdown() {
	close(h.done)
}

// ConnectionsCount reports the number of attached clients.
func (h *Hub) ConnectionsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
