package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	TaskVerificationEmail = "verification_email"
	TaskTeamInvite        = "team_invite"
	TaskSessionReap       = "session_reap"
)

// Task is one stream entry. Fields are flat strings so the entry reads the
// same in redis-cli as it does in the worker.
type Task struct {
	Type      string `json:"type"`
	To        string `json:"to,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	InvitedBy string `json:"invitedBy,omitempty"`
}

func (t Task) values() map[string]any {
	values := map[string]any{"type": t.Type}
	for key, val := range map[string]string{
		"to":        t.To,
		"name":      t.Name,
		"token":     t.Token,
		"invitedBy": t.InvitedBy,
	} {
		if val != "" {
			values[key] = val
		}
	}
	return values
}

// Enqueuer is what the API side needs from the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) (string, error)
}

type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	return &Producer{client: client, stream: stream, maxLen: maxLen}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) (string, error) {
	if task.Type == "" {
		return "", errors.New("task type required")
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", task.Type, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group (and stream) if it does not exist.
func EnsureGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s: %w", group, err)
	}
	return nil
}
