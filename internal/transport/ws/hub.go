package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Merchant feed message types
const (
	MsgSessionStarted   MessageType = "session_started"
	MsgAnswerRecorded   MessageType = "answer_recorded"
	MsgSessionCompleted MessageType = "session_completed"
	MsgError            MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages merchant WebSocket connections per catalog. Merchants watch
// shoppers move through the questionnaire in real time.
type Hub struct {
	// catalogID -> open merchant connections
	merchantConns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	CatalogID  string
	MerchantID string
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	CatalogID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		merchantConns: make(map[string]map[*Connection]struct{}),
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		broadcast:     make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.merchantConns[conn.CatalogID] == nil {
				h.merchantConns[conn.CatalogID] = make(map[*Connection]struct{})
			}
			h.merchantConns[conn.CatalogID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("Merchant %s watching catalog %s", conn.MerchantID, conn.CatalogID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.merchantConns[conn.CatalogID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Merchant %s stopped watching catalog %s", conn.MerchantID, conn.CatalogID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.merchantConns[msg.CatalogID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToMerchant sends an event to every merchant watching a catalog
// (implements service.Broadcaster)
func (h *Hub) BroadcastToMerchant(catalogID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		CatalogID: catalogID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
