// Package approval implements the account, vendor and product approval
// workflows. All three share one shape: a submission starts pending and
// moves once to approved or rejected. Both outcomes are terminal.
package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

type Entity string

const (
	EntityAccount Entity = "account"
	EntityVendor  Entity = "vendor"
	EntityProduct Entity = "product"
)

// Transition validates a move of a single entity. Only pending entities may
// be decided, and only to approved or rejected.
func Transition(entity Entity, from, to models.ApprovalStatus) error {
	if to != models.ApprovalApproved && to != models.ApprovalRejected {
		return apperr.InvalidInput(fmt.Sprintf("unsupported %s decision %q", entity, to))
	}
	if from != models.ApprovalPending {
		return apperr.Invariant(fmt.Sprintf("%s is %s, not pending", entity, from))
	}
	return nil
}

// Event records one applied transition. Cascaded lists the linked entities
// updated in the same unit of work, as "<entity>:<id>".
type Event struct {
	Entity   Entity                `json:"entity"`
	IDs      []string              `json:"ids"`
	From     models.ApprovalStatus `json:"from"`
	To       models.ApprovalStatus `json:"to"`
	ActorID  string                `json:"actorId"`
	At       time.Time             `json:"at"`
	Cascaded []string              `json:"cascaded,omitempty"`
}

type AuditSink interface {
	Record(ctx context.Context, event Event) error
}

type nopSink struct{}

func (nopSink) Record(context.Context, Event) error { return nil }

func record(ctx context.Context, sink AuditSink, log zerolog.Logger, event Event) {
	if err := sink.Record(ctx, event); err != nil {
		log.Error().Err(err).
			Str("entity", string(event.Entity)).
			Strs("ids", event.IDs).
			Msg("failed to archive approval event")
	}
}
