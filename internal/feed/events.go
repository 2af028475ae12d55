// Package feed keeps a live snapshot of the community feed in sync with
// change events published over Redis.
package feed

import "encoding/json"

// Feed change event types carried on the feed events channel.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostVisibility = "post_visibility_changed"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventCommentCreated = "comment_created"
)

// Event is the envelope every feed change event travels in.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PostEventPayload carries the identifiers and counter deltas a consumer
// needs to patch its snapshot without a full refetch. Fields the producer
// cannot supply stay nil and force a refetch on the consumer side.
type PostEventPayload struct {
	PostID        uint  `json:"post_id"`
	LikesCount    *int  `json:"likes_count,omitempty"`
	CommentsCount *int  `json:"comments_count,omitempty"`
	Visible       *bool `json:"visible,omitempty"`
}

// EncodeEvent marshals an event envelope with the given payload.
func EncodeEvent(eventType string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
