// Package notify hands outbound account emails to the worker queue.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/queue"
)

// Result reports the outcome of a notification. Skipped means nothing was
// attempted because delivery is disabled; Err is set only when an attempt
// failed.
type Result struct {
	Success bool
	Skipped bool
	Err     error
}

type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) Result
	SendTeamInvite(ctx context.Context, to, name, invitedBy, token string) Result
}

type QueueNotifier struct {
	queue   queue.Enqueuer
	enabled bool
	log     zerolog.Logger
}

// NewQueueNotifier returns a notifier that enqueues mail tasks. A nil queue
// or enabled=false turns every send into a skip.
func NewQueueNotifier(q queue.Enqueuer, enabled bool, log zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{
		queue:   q,
		enabled: enabled,
		log:     log.With().Str("component", "notify").Logger(),
	}
}

func (n *QueueNotifier) SendVerificationEmail(ctx context.Context, to, name, token string) Result {
	return n.send(ctx, queue.Task{
		Type:  queue.TaskVerificationEmail,
		To:    to,
		Name:  name,
		Token: token,
	})
}

func (n *QueueNotifier) SendTeamInvite(ctx context.Context, to, name, invitedBy, token string) Result {
	return n.send(ctx, queue.Task{
		Type:      queue.TaskTeamInvite,
		To:        to,
		Name:      name,
		Token:     token,
		InvitedBy: invitedBy,
	})
}

func (n *QueueNotifier) send(ctx context.Context, task queue.Task) Result {
	if !n.enabled || n.queue == nil {
		n.log.Debug().Str("type", task.Type).Str("to", task.To).Msg("notification skipped")
		return Result{Skipped: true}
	}
	id, err := n.queue.Enqueue(ctx, task)
	if err != nil {
		n.log.Warn().Err(err).Str("type", task.Type).Str("to", task.To).Msg("notification enqueue failed")
		return Result{Err: err}
	}
	n.log.Debug().Str("type", task.Type).Str("message_id", id).Msg("notification enqueued")
	return Result{Success: true}
}
