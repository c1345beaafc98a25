package negotiation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const (
	submitClaimKey = "negotiation.claim.submit"
	decideClaimKey = "negotiation.claim.decide"
)

// SubmitClaimCommand files a lost-and-found ownership assertion on the
// caller's conversation. One claim per claimant per conversation.
type SubmitClaimCommand struct {
	ConversationID string
	ClaimantID     string
	When           string
	Where          string
	Details        string
}

func (c SubmitClaimCommand) Key() string { return submitClaimKey }

// DecideClaimCommand is the owner's approve/reject verdict on a claim.
type DecideClaimCommand struct {
	ConversationID string
	ClaimID        string
	DeciderID      string
	Approve        bool
}

func (c DecideClaimCommand) Key() string { return decideClaimKey }

type SubmitClaimHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *SubmitClaimHandler) Handle(ctx context.Context, cmd SubmitClaimCommand) (*dto.Claim, error) {
	claimant := strings.TrimSpace(cmd.ClaimantID)
	if claimant == "" {
		return nil, fault.InvalidOperation("negotiation: claimant id is required")
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(cmd.ConversationID))
	if err != nil {
		return nil, err
	}
	if conversation.ListingType != domainlistings.TypeLost {
		return nil, fault.InvalidOperation("negotiation: claims apply only to lost-and-found listings")
	}
	if !conversation.IsParticipant(claimant) {
		return nil, domainnegotiation.ErrNotParticipant
	}
	if claimant == conversation.Owner {
		return nil, fault.InvalidOperation("negotiation: the finder cannot claim their own found item")
	}
	if existing, err := unit.Claims().ByConversationAndClaimant(execCtx, conversation.ID, claimant); err == nil && existing != nil {
		return nil, domainnegotiation.ErrDuplicateClaim
	} else if err != nil && !errors.Is(err, domainnegotiation.ErrClaimNotFound) {
		return nil, err
	}

	ts := now()
	claim, err := domainnegotiation.SubmitClaim(domainnegotiation.SubmitClaimParams{
		ID:             domainnegotiation.ClaimID(uuid.NewString()),
		ConversationID: conversation.ID,
		ClaimantID:     claimant,
		Answers:        domainnegotiation.ClaimAnswers{When: cmd.When, Where: cmd.Where, Details: cmd.Details},
		Now:            ts,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Claims().Save(execCtx, claim); err != nil {
		return nil, err
	}
	conversation.MarkClaimSubmitted(ts)
	conversation.Record(domainnegotiation.ClaimSubmitted{ConversationID: conversation.ID, ClaimID: claim.ID, ClaimantID: claimant, At: ts})
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}
	if err := drainEvents(execCtx, h.Outbox, conversation); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("claim submitted", "conversation_id", conversation.ID, "claim_id", claim.ID, "claimant_id", claimant)
	}
	result := dto.MapClaim(claim)
	return &result, nil
}

type DecideClaimHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *DecideClaimHandler) Handle(ctx context.Context, cmd DecideClaimCommand) (*dto.Claim, error) {
	decider := strings.TrimSpace(cmd.DeciderID)
	if decider == "" {
		return nil, fault.InvalidOperation("negotiation: decider id is required")
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(cmd.ConversationID))
	if err != nil {
		return nil, err
	}
	if decider != conversation.Owner {
		return nil, domainnegotiation.ErrNotListingOwner
	}
	claim, err := unit.Claims().ByID(execCtx, domainnegotiation.ClaimID(cmd.ClaimID))
	if err != nil {
		return nil, err
	}
	if claim.ConversationID != conversation.ID {
		return nil, domainnegotiation.ErrClaimNotFound
	}

	ts := now()
	if cmd.Approve {
		if err := claim.Approve(ts); err != nil {
			return nil, err
		}
		// Reject every sibling claim in the same batch write so a concurrent
		// second approval cannot leave two approved claimants.
		siblings, err := unit.Claims().ListByConversation(execCtx, conversation.ID)
		if err != nil {
			return nil, err
		}
		batch := make([]*domainnegotiation.Claim, 0, len(siblings))
		batch = append(batch, claim)
		for _, sibling := range siblings {
			if sibling.ID == claim.ID {
				continue
			}
			sibling.ForceReject(ts)
			batch = append(batch, sibling)
		}
		if err := unit.Claims().SaveAll(execCtx, batch); err != nil {
			return nil, err
		}
		conversation.ApproveClaimant(claim.ClaimantID, ts)
		if err := appendSystemMessage(execCtx, unit, conversation, "Claim approved. You can now chat to arrange the return.", ts); err != nil {
			return nil, err
		}
	} else {
		if err := claim.Reject(ts); err != nil {
			return nil, err
		}
		if err := unit.Claims().Save(execCtx, claim); err != nil {
			return nil, err
		}
		if err := appendSystemMessage(execCtx, unit, conversation, "Claim rejected by the finder.", ts); err != nil {
			return nil, err
		}
	}
	conversation.Record(domainnegotiation.ClaimDecided{ConversationID: conversation.ID, ClaimID: claim.ID, ClaimantID: claim.ClaimantID, Approved: cmd.Approve, At: ts})
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}
	if err := drainEvents(execCtx, h.Outbox, conversation); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("claim decided", "conversation_id", conversation.ID, "claim_id", claim.ID, "approved", cmd.Approve)
	}
	result := dto.MapClaim(claim)
	return &result, nil
}

var _ commands.Handler[SubmitClaimCommand, *dto.Claim] = (*SubmitClaimHandler)(nil)
var _ commands.Handler[DecideClaimCommand, *dto.Claim] = (*DecideClaimHandler)(nil)
