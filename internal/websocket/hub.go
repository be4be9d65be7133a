package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/storerating-backend/internal/events"
	"github.com/ikkim/storerating-backend/pkg/logger"
)

const sendBufferSize = 32

// Client is one websocket session following a store's ratings.
type Client struct {
	hub     *Hub
	conn    *Conn
	StoreID uint
	UserID  uint
	send    chan []byte
}

// Hub tracks websocket sessions per store and pushes rating events to them.
type Hub struct {
	// StoreID -> sessions (one owner may have several tabs open)
	clients map[uint]map[*Client]struct{}
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Attach registers conn as a subscriber of storeID and starts its pumps.
func (h *Hub) Attach(conn *Conn, storeID, userID uint) *Client {
	client := &Client{
		hub:     h,
		conn:    conn,
		StoreID: storeID,
		UserID:  userID,
		send:    make(chan []byte, sendBufferSize),
	}
	h.register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	sessions, ok := h.clients[client.StoreID]
	if !ok {
		sessions = make(map[*Client]struct{})
		h.clients[client.StoreID] = sessions
	}
	sessions[client] = struct{}{}
	total := len(sessions)
	h.mu.Unlock()

	logger.Info("WebSocket client registered", map[string]interface{}{
		"store_id":       client.StoreID,
		"user_id":        client.UserID,
		"total_sessions": total,
	})
}

// unregister removes client and closes its send channel. Safe to call twice.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	sessions, ok := h.clients[client.StoreID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := sessions[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(sessions, client)
	if len(sessions) == 0 {
		delete(h.clients, client.StoreID)
	}
	close(client.send)
	remaining := len(sessions)
	h.mu.Unlock()

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"store_id":           client.StoreID,
		"user_id":            client.UserID,
		"remaining_sessions": remaining,
	})
}

// Publish pushes event to every session following its store. Sessions whose
// buffer is full are disconnected instead of blocking the publisher.
func (h *Hub) Publish(_ context.Context, event events.RatingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal rating event", err)
		return err
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients[event.StoreID] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
			"store_id": client.StoreID,
			"user_id":  client.UserID,
		})
		h.unregister(client)
	}
	return nil
}

// Subscribers returns the number of sessions following storeID.
func (h *Hub) Subscribers(storeID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[storeID])
}

// Shutdown disconnects every session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	var all []*Client
	for _, sessions := range h.clients {
		for client := range sessions {
			all = append(all, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range all {
		h.unregister(client)
	}
}
