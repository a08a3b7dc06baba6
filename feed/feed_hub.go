package feed

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kasalashiva/temple-meals/models"
)

// Event types pushed to connected admin dashboards.
const (
	EventRequestCreated = "request_created"
	EventMealStatus     = "meal_status_update"
	EventPaymentStatus  = "payment_status_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds all connected dashboard clients.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastRequestCreated announces a new meal request.
func BroadcastRequestCreated(m models.MealRequest) {
	broadcast(Message{Event: EventRequestCreated, Data: m})
}

// BroadcastMealStatus announces an approval-axis change.
func BroadcastMealStatus(m models.MealRequest) {
	broadcast(Message{Event: EventMealStatus, Data: m})
}

// BroadcastPaymentStatus announces a payment-axis change.
func BroadcastPaymentStatus(m models.MealRequest) {
	broadcast(Message{Event: EventPaymentStatus, Data: m})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling feed message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending feed message: %v", err)
		}
	}
}
