package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agv-simulator/config"
	"agv-simulator/models"

	"github.com/go-redis/redis/v8"
)

// Client caches the most recent state snapshot per robot so the control API
// can serve reads without touching the robots. It is a live cache, not a
// persistence layer: nothing survives a restart on the simulator side.
type Client struct {
	client *redis.Client
	ctx    context.Context
}

func NewClient(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		client: rdb,
		ctx:    ctx,
	}, nil
}

// SaveState stores the latest snapshot for a robot with a 24 hour expiry.
func (c *Client) SaveState(robotID string, state *models.StateMessage) error {
	key := fmt.Sprintf("robot:state:%s", robotID)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := c.client.Set(c.ctx, key, stateJSON, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to save state to Redis: %w", err)
	}
	return nil
}

// GetState returns the most recently cached snapshot for a robot.
func (c *Client) GetState(robotID string) (*models.StateMessage, error) {
	key := fmt.Sprintf("robot:state:%s", robotID)

	val, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("state not found for robot %s", robotID)
		}
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state models.StateMessage
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
