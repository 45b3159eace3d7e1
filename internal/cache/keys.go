package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	CommunityKeyPrefix = "community:%d"
	WSTicketPrefix     = "ws_ticket:%s"
)

const (
	UserTTL      = 5 * time.Minute
	CommunityTTL = 2 * time.Minute
	WSTicketTTL  = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CommunityKey(communityID uint) string {
	return fmt.Sprintf(CommunityKeyPrefix, communityID)
}

// WSTicketKey is the Redis key holding the user id for a one-time WebSocket ticket.
func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketPrefix, ticket)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCommunity(ctx context.Context, communityID uint) {
	Invalidate(ctx, CommunityKey(communityID))
}
