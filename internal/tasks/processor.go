package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/queue"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a rendered message. Delivery itself lives outside this
// service; LogMailer is the default.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type LogMailer struct {
	Logger zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail handed off")
	return nil
}

type SessionReaper interface {
	ReapExpired(ctx context.Context) (int64, error)
}

type Processor struct {
	mailer  Mailer
	reaper  SessionReaper
	from    string
	baseURL string
	logger  zerolog.Logger
}

func NewProcessor(mailer Mailer, reaper SessionReaper, from, baseURL string, logger zerolog.Logger) *Processor {
	return &Processor{
		mailer:  mailer,
		reaper:  reaper,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var task queue.Task
	if err := decodePayload(msg.Values, &task); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch task.Type {
	case queue.TaskVerificationEmail:
		return p.handleVerificationEmail(ctx, task)
	case queue.TaskTeamInvite:
		return p.handleTeamInvite(ctx, task)
	case queue.TaskSessionReap:
		return p.handleSessionReap(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *queue.Task) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) link(path, token string) string {
	return p.baseURL + path + "?token=" + url.QueryEscape(token)
}

func (p *Processor) handleVerificationEmail(ctx context.Context, task queue.Task) error {
	if task.To == "" || task.Token == "" {
		return errors.New("verification email needs recipient and token")
	}
	greeting := "Hello"
	if task.Name != "" {
		greeting += " " + task.Name
	}
	return p.mailer.Send(ctx, Message{
		From:    p.from,
		To:      task.To,
		Subject: "Verify your email address",
		Body: greeting + ",\n\nConfirm your email address to finish setting up your account:\n" +
			p.link("/api/v1/auth/verify-email", task.Token) +
			"\n\nThe link expires in 24 hours.\n",
	})
}

func (p *Processor) handleTeamInvite(ctx context.Context, task queue.Task) error {
	if task.To == "" || task.Token == "" {
		return errors.New("team invite needs recipient and token")
	}
	inviter := task.InvitedBy
	if inviter == "" {
		inviter = "Your team"
	}
	return p.mailer.Send(ctx, Message{
		From:    p.from,
		To:      task.To,
		Subject: inviter + " invited you to join their workspace",
		Body: inviter + " invited you to collaborate.\n\nAccept the invitation here:\n" +
			p.link("/team/accept", task.Token) + "\n",
	})
}

func (p *Processor) handleSessionReap(ctx context.Context) error {
	if p.reaper == nil {
		return nil
	}
	n, err := p.reaper.ReapExpired(ctx)
	if err != nil {
		return fmt.Errorf("reap sessions: %w", err)
	}
	p.logger.Info().Int64("deactivated", n).Msg("expired sessions reaped")
	return nil
}
