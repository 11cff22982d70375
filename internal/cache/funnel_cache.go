package cache

import (
	"context"
	"fmt"

	"catalogfinder/internal/model"

	"github.com/redis/go-redis/v9"
)

// FunnelCache tracks, per catalog, how many sessions ended in each leaf.
// Backed by a Redis sorted set keyed by leaf path.
type FunnelCache interface {
	RecordArrival(ctx context.Context, catalogID, leafPath string) error
	GetTop(ctx context.Context, catalogID string, limit int) ([]model.LeafArrival, error)
}

type funnelCache struct {
	client *redis.Client
}

// NewFunnelCache creates a new funnel cache
func NewFunnelCache(client *redis.Client) FunnelCache {
	return &funnelCache{
		client: client,
	}
}

func (c *funnelCache) key(catalogID string) string {
	return fmt.Sprintf("catalog:%s:funnel", catalogID)
}

func (c *funnelCache) RecordArrival(ctx context.Context, catalogID, leafPath string) error {
	return c.client.ZIncrBy(ctx, c.key(catalogID), 1, leafPath).Err()
}

func (c *funnelCache) GetTop(ctx context.Context, catalogID string, limit int) ([]model.LeafArrival, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(catalogID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	arrivals := make([]model.LeafArrival, len(results))
	for i, z := range results {
		arrivals[i] = model.LeafArrival{
			NodePath: z.Member.(string),
			Count:    int64(z.Score),
		}
	}
	return arrivals, nil
}
