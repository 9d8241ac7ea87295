package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/saurabh-chakrabarthi/hermes/models"
)

// Live payment feed: dashboard clients subscribe anonymously and every
// created payment is pushed to all of them.

var clients = make(map[*websocket.Conn]bool)
var clientsMu sync.RWMutex
var Register = make(chan *websocket.Conn)
var Unregister = make(chan *websocket.Conn)
var Broadcast = make(chan *models.Payment, 16)

func RunHub() {
	for {
		select {
		case conn := <-Register:
			log.Printf("Feed client registered: %s", conn.RemoteAddr())
			clientsMu.Lock()
			clients[conn] = true
			clientsMu.Unlock()
		case conn := <-Unregister:
			log.Printf("Feed client unregistered: %s", conn.RemoteAddr())
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
		case payment := <-Broadcast:
			var stale []*websocket.Conn
			clientsMu.RLock()
			for conn := range clients {
				if err := conn.WriteJSON(payment); err != nil {
					log.Printf("Error sending payment %s to feed client: %v", payment.Reference, err)
					conn.Close()
					stale = append(stale, conn)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, conn := range stale {
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// FeedHandler keeps a subscriber connection open until the client leaves.
func FeedHandler(conn *websocket.Conn) {
	Register <- conn
	defer func() {
		Unregister <- conn
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
