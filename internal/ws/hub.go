package ws

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks connected clients by user so lifecycle and message events can be
// pushed to the one user they concern instead of every open socket.
type Hub struct {
	clients    map[*Client]bool
	byUser     map[uuid.UUID]map[*Client]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *zap.Logger
}

type directMessage struct {
	userID  uuid.UUID
	payload []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan []byte, 1024),
		direct:     make(chan directMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// SendToUser queues the payload for every open socket of one user. A user
// with no connections drops the payload silently.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	h.direct <- directMessage{userID: userID, payload: payload}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			if client.userID != uuid.Nil {
				set, ok := h.byUser[client.userID]
				if !ok {
					set = make(map[*Client]bool)
					h.byUser[client.userID] = set
				}
				set[client] = true
			}
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Info("ws connected", zap.Int("total_clients", total))
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			if set, ok := h.byUser[client.userID]; ok {
				delete(set, client)
				if len(set) == 0 {
					delete(h.byUser, client.userID)
				}
			}
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Info("ws disconnected", zap.Int("total_clients", total))
			}

		case msg := <-h.direct:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.byUser[msg.userID]))
			for c := range h.byUser[msg.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.unregister <- client
				}
			}

		case message := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- message:
				default:
					h.unregister <- client
				}
			}
		}
	}
}
