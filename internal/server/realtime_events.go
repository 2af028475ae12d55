package server

import (
	"context"
	"log"

	"koinonia/internal/feed"
)

// publishFeedEvent pushes a feed change event to the local bridge and to
// Redis for every other instance. The hub fan-out to websocket clients
// happens through the Redis subscription, so the event reaches local clients
// exactly once.
func (s *Server) publishFeedEvent(eventType string, payload feed.PostEventPayload) {
	message, err := feed.EncodeEvent(eventType, payload)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishFeedEvent(context.Background(), message); err != nil {
			log.Printf("failed to publish %s feed event: %v", eventType, err)
		}
		return
	}
	// Without Redis there is no subscriber to feed the bridge, so apply the
	// event directly and fan out to local clients.
	if s.feedBridge != nil {
		s.feedBridge.HandleEvent(context.Background(), message)
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}

func (s *Server) publishUserEvent(userID uint, eventType string, payload any) {
	message, err := feed.EncodeEvent(eventType, payload)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
}
