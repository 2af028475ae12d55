package server

import (
	"encoding/json"
	"log"

	"koinonia/internal/feed"
	"koinonia/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles WebSocket connections for live feed updates.
// Clients receive feed events (new posts, likes, comments, moderation)
// pushed through the hub so the frontend can keep its feed current
// without polling.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		// Set by AuthRequired (ticket or JWT)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live updates unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		log.Printf("WebSocket: user %d connected to live feed", userID)

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			s.handleClientFrame(c, message)
		}

		// Greet with the bridge's current snapshot metadata so the client
		// knows whether to do an initial fetch.
		posts, state, _ := s.feedBridge.Snapshot()
		welcome, marshalErr := json.Marshal(map[string]any{
			"type": "connected",
			"payload": map[string]any{
				"user_id":    userID,
				"feed_state": state.String(),
				"feed_size":  len(posts),
			},
		})
		if marshalErr == nil {
			client.TrySend(welcome)
		}

		go client.WritePump()

		// Read pump runs in the handler goroutine (blocking)
		client.ReadPump()
	})
}

// handleClientFrame processes a frame sent by a connected client. The only
// supported request is "resync", which replies with the bridge's snapshot.
func (s *Server) handleClientFrame(client *notifications.Client, message []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &frame); err != nil {
		return
	}

	if frame.Type != "resync" {
		return
	}

	posts, state, _ := s.feedBridge.Snapshot()
	if state != feed.StateLoaded && len(posts) == 0 {
		return
	}

	resp, err := json.Marshal(map[string]any{
		"type": "feed_snapshot",
		"payload": map[string]any{
			"posts": posts,
			"state": state.String(),
		},
	})
	if err != nil {
		return
	}
	client.TrySend(resp)
}
