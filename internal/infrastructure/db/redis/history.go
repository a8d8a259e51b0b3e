package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/neonchat/chat-server/internal/core/domain"
)

const historyKey = "chat:history"

// HistoryCache keeps the most recent broadcast messages in a capped Redis
// list so the history endpoint does not hit PostgreSQL on every request.
// Writes are best-effort; PostgreSQL remains the source of truth.
type HistoryCache struct {
	client *redis.Client
	cap    int64
}

// NewHistoryCache creates a HistoryCache retaining at most capacity messages.
func NewHistoryCache(client *redis.Client, capacity int) *HistoryCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &HistoryCache{client: client, cap: int64(capacity)}
}

// Push prepends msg to the list and trims it to capacity.
func (h *HistoryCache) Push(ctx context.Context, msg domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("history push: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, historyKey, raw)
	pipe.LTrim(ctx, historyKey, 0, h.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	return nil
}

// Recent returns up to limit cached messages, newest first. An empty result
// means the cache is cold, not that no messages exist.
func (h *HistoryCache) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 || int64(limit) > h.cap {
		limit = int(h.cap)
	}

	raws, err := h.client.LRange(ctx, historyKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("history read: %w", err)
	}

	out := make([]domain.Message, 0, len(raws))
	for _, raw := range raws {
		var m domain.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("history decode: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
