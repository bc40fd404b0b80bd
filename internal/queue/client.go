package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueName is the Redis list holding pending analysis tasks.
const QueueName = "mailscope:analysis_tasks"

// Task is one unit of work: analyze a single email belonging to a batch
// job.
type Task struct {
	JobID string `json:"job_id"`
	Email string `json:"email"`
}

// Client wraps the Redis connection used as the batch work queue.
type Client struct {
	rdb *redis.Client
}

// Connect dials Redis and pings it to make sure it is alive.
func Connect(addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Enqueue pushes one task per email onto the queue.
func (c *Client) Enqueue(ctx context.Context, jobID string, emails []string) error {
	for _, email := range emails {
		payload, err := json.Marshal(Task{JobID: jobID, Email: email})
		if err != nil {
			return fmt.Errorf("marshal task: %w", err)
		}
		if err := c.rdb.RPush(ctx, QueueName, payload).Err(); err != nil {
			return fmt.Errorf("enqueue task: %w", err)
		}
	}
	return nil
}

// Dequeue blocks until a task is available and returns it.
func (c *Client) Dequeue(ctx context.Context) (Task, error) {
	var task Task

	result, err := c.rdb.BLPop(ctx, 0, QueueName).Result()
	if err != nil {
		return task, fmt.Errorf("dequeue: %w", err)
	}
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return task, fmt.Errorf("malformed task %q: %w", result[1], err)
	}
	return task, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
