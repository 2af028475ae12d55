package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix  = "profile:%d"
	PostKeyPrefix     = "post:%d"
	FeedListKeyPrefix = "feed:list:%s"
	RadioGuideKey     = "radio:guide"
)

const (
	ProfileTTL    = 5 * time.Minute
	PostTTL       = 10 * time.Minute
	FeedListTTL   = 30 * time.Second
	RadioGuideTTL = 10 * time.Minute
)

func ProfileKey(profileID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedListKey keys the anonymous feed listing by audience ("members" or "admin").
func FeedListKey(audience string) string {
	return fmt.Sprintf(FeedListKeyPrefix, audience)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, profileID uint) {
	Invalidate(ctx, ProfileKey(profileID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateFeedLists(ctx context.Context) {
	Invalidate(ctx, FeedListKey("members"))
	Invalidate(ctx, FeedListKey("admin"))
}
