package socket

import (
	"encoding/json"
	"sync"

	"resumecms/internal/publish/model"
	"resumecms/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	PublishedType = "PUBLISHED" // A publish finished; payload is the PublishResult
)

type WSMessage struct {
	Type    string          `json:"type"`
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans publish events out to every connected admin client.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	done       chan struct{}
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Client connected: %s", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logger.Sugar.Infof("Client disconnected: %s", client.UserID)
			}
			h.mu.Unlock()

		case payload := <-h.Broadcast:
			// Copy the recipients so no lock is held while sending.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// A lagging client is dropped rather than blocking the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Dropping.", client.UserID)
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.Send)
					}
					h.mu.Unlock()
				}
			}

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// NotifyPublished queues a PUBLISHED event. It never blocks the publish
// call; when the queue is full the event is dropped and logged.
func (h *Hub) NotifyPublished(userID string, result model.PublishResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling publish result: %v", err)
		return
	}
	msg, err := json.Marshal(WSMessage{Type: PublishedType, UserID: userID, Payload: payload})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		logger.Sugar.Warnf("Broadcast queue full, dropping publish event %s", result.VersionID)
	}
}
