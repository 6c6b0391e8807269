// Package realtime tracks connected websocket clients per user and pushes
// them events. Delivery is best effort: a slow or gone client is dropped,
// never waited on, and a user with no open connection simply misses the
// push (the stored notification remains the source of truth).
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is the frame sent to connected clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Registry struct {
	// Connected clients keyed by user; one user may hold several tabs.
	clients map[primitive.ObjectID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (r *Registry) Run() {
	for {
		select {
		case client := <-r.register:
			r.mutex.Lock()
			if r.clients[client.userID] == nil {
				r.clients[client.userID] = make(map[*Client]bool)
			}
			r.clients[client.userID][client] = true
			r.mutex.Unlock()
			logrus.WithField("user_id", client.userID.Hex()).Debug("Realtime client connected")

		case client := <-r.unregister:
			r.mutex.Lock()
			if clients, ok := r.clients[client.userID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(r.clients, client.userID)
					}
				}
			}
			r.mutex.Unlock()
			logrus.WithField("user_id", client.userID.Hex()).Debug("Realtime client disconnected")
		}
	}
}

// Push sends the event to every open connection of the user. It returns
// immediately; clients whose buffers are full are dropped.
func (r *Registry) Push(userID primitive.ObjectID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal realtime event")
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	clients := r.clients[userID]
	for client := range clients {
		select {
		case client.send <- payload:
		default:
			close(client.send)
			delete(clients, client)
			if len(clients) == 0 {
				delete(r.clients, userID)
			}
		}
	}
}

// IsOnline reports whether the user has at least one open connection.
func (r *Registry) IsOnline(userID primitive.ObjectID) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.clients[userID]) > 0
}

// ConnectionsCount returns the total number of open connections.
func (r *Registry) ConnectionsCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	total := 0
	for _, clients := range r.clients {
		total += len(clients)
	}
	return total
}
