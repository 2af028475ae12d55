package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"koinonia/internal/models"
	"koinonia/internal/notifications"
	"koinonia/internal/observability"
)

// State describes the snapshot lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Fetcher loads the full visible feed, newest first.
type Fetcher func(ctx context.Context) ([]*models.Post, error)

// Bridge subscribes to feed change events and maintains an in-memory
// snapshot of the visible feed. Cheap events patch the snapshot in place;
// anything ambiguous triggers a full refetch. Fetches are sequence-numbered
// so a slow older fetch can never overwrite the result of a newer one.
type Bridge struct {
	mu      sync.RWMutex
	state   State
	posts   map[uint]*models.Post
	order   []uint
	lastErr error

	issuedSeq  uint64
	appliedSeq uint64

	fetch Fetcher
}

// NewBridge creates a bridge around the given fetcher.
func NewBridge(fetch Fetcher) *Bridge {
	return &Bridge{
		state: StateIdle,
		posts: make(map[uint]*models.Post),
		fetch: fetch,
	}
}

// Start performs the initial load and subscribes to the feed events channel.
// The subscription ends when ctx is cancelled.
func (b *Bridge) Start(ctx context.Context, notifier *notifications.Notifier) error {
	b.Refresh(ctx)
	return notifier.StartFeedSubscriber(ctx, func(channel, payload string) {
		if channel != notifications.FeedEventsChannel {
			return
		}
		b.HandleEvent(ctx, payload)
	})
}

// Snapshot returns the current feed ordering and state. The returned slice
// is a copy, and entries are never mutated after being handed out: counter
// patches replace the map entry instead of writing through it, so callers
// may marshal the posts without holding any lock.
func (b *Bridge) Snapshot() ([]*models.Post, State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*models.Post, 0, len(b.order))
	for _, id := range b.order {
		if p, ok := b.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, b.state, b.lastErr
}

// HandleEvent applies one change event to the snapshot.
func (b *Bridge) HandleEvent(ctx context.Context, payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		slog.Warn("feed bridge: malformed event", "error", err)
		b.Refresh(ctx)
		return
	}
	observability.FeedEventsTotal.WithLabelValues(event.Type).Inc()

	var pe PostEventPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &pe); err != nil {
			slog.Warn("feed bridge: malformed event payload", "type", event.Type, "error", err)
			b.Refresh(ctx)
			return
		}
	}

	switch event.Type {
	case EventPostDeleted:
		b.removePost(pe.PostID)
	case EventPostLiked:
		if !b.patchCounters(pe.PostID, pe.LikesCount, nil) {
			b.Refresh(ctx)
		}
	case EventCommentCreated:
		if !b.patchCounters(pe.PostID, nil, pe.CommentsCount) {
			b.Refresh(ctx)
		}
	case EventPostVisibility:
		// Hiding a known post is a cheap removal. Revealing one means we
		// lack its data, so fall through to a refetch.
		if pe.Visible != nil && !*pe.Visible {
			b.removePost(pe.PostID)
			return
		}
		b.Refresh(ctx)
	default:
		// post_created, post_updated, and anything unrecognized carry
		// changes the snapshot cannot patch locally.
		b.Refresh(ctx)
	}
}

func (b *Bridge) removePost(postID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.posts[postID]; !ok {
		return
	}
	delete(b.posts, postID)
	for i, id := range b.order {
		if id == postID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// patchCounters updates a post's derived counters. The entry is replaced
// with a patched copy rather than written through, because earlier Snapshot
// callers may still be reading the old value. Returns false when the post
// is unknown or the event did not carry the new values, in which case the
// caller refetches.
func (b *Bridge) patchCounters(postID uint, likes, comments *int) bool {
	if likes == nil && comments == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[postID]
	if !ok {
		return false
	}
	patched := *post
	if likes != nil {
		patched.LikesCount = *likes
	}
	if comments != nil {
		patched.CommentsCount = *comments
	}
	b.posts[postID] = &patched
	return true
}

// Refresh reloads the whole snapshot. Completions are applied in issue
// order: a fetch that finishes after a later-issued one already landed is
// discarded, and a failed fetch keeps the last good snapshot.
func (b *Bridge) Refresh(ctx context.Context) {
	b.mu.Lock()
	b.issuedSeq++
	seq := b.issuedSeq
	if b.state == StateIdle || b.state == StateError {
		b.state = StateLoading
	}
	b.mu.Unlock()

	posts, err := b.fetch(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq <= b.appliedSeq {
		observability.FeedRefreshesTotal.WithLabelValues("stale").Inc()
		return
	}

	if err != nil {
		observability.FeedRefreshesTotal.WithLabelValues("failed").Inc()
		b.lastErr = err
		// The last good snapshot is retained; only the state flips so
		// consumers can tell the data may be stale.
		b.state = StateError
		slog.Error("feed bridge: refresh failed", "error", err)
		return
	}

	b.appliedSeq = seq
	b.posts = make(map[uint]*models.Post, len(posts))
	b.order = make([]uint, 0, len(posts))
	for _, p := range posts {
		b.posts[p.ID] = p
		b.order = append(b.order, p.ID)
	}
	b.state = StateLoaded
	b.lastErr = nil
	observability.FeedRefreshesTotal.WithLabelValues("applied").Inc()
}
