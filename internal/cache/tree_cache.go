package cache

import (
	"context"
	"encoding/json"
	"time"

	"catalogfinder/internal/model"

	"github.com/redis/go-redis/v9"
)

// TreeCache holds the hot copy of a tree snapshot so concurrent sessions
// navigate against Redis instead of re-reading the Mongo document. Snapshots
// are immutable, so a cached copy can never go stale.
type TreeCache interface {
	Set(ctx context.Context, snapshot *model.TreeSnapshot) error
	Get(ctx context.Context, treeID string) (*model.TreeSnapshot, error)
}

type treeCache struct {
	client *redis.Client
}

// NewTreeCache creates a new tree cache
func NewTreeCache(client *redis.Client) TreeCache {
	return &treeCache{
		client: client,
	}
}

func (c *treeCache) Set(ctx context.Context, snapshot *model.TreeSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "tree:"+snapshot.ID, data, 2*time.Hour).Err()
}

func (c *treeCache) Get(ctx context.Context, treeID string) (*model.TreeSnapshot, error) {
	data, err := c.client.Get(ctx, "tree:"+treeID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.TreeSnapshot
	err = json.Unmarshal([]byte(data), &snapshot)
	return &snapshot, err
}
