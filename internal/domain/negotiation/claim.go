package negotiation

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradepost/internal/domain/shared/fault"
)

var (
	ErrClaimNotFound   = fault.Wrap(fault.KindNotFound, errors.New("negotiation: claim not found"))
	ErrDuplicateClaim  = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: claimant already submitted a claim"))
	ErrClaimDecided    = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: claim already decided"))
	ErrNotListingOwner = fault.Wrap(fault.KindForbidden, errors.New("negotiation: only the listing owner may decide claims"))
)

type ClaimID string

type ClaimApproval string

const (
	ClaimPending  ClaimApproval = "pending"
	ClaimApproved ClaimApproval = "approved"
	ClaimRejected ClaimApproval = "rejected"
)

// ClaimAnswers holds the claimant's free-form ownership assertion.
type ClaimAnswers struct {
	When    string
	Where   string
	Details string
}

// Claim is a lost-and-found ownership assertion owned by a conversation.
// It is decided exactly once and never re-opened.
type Claim struct {
	ID             ClaimID
	ConversationID ConversationID
	ClaimantID     string
	Answers        ClaimAnswers
	Approval       ClaimApproval
	SubmittedAt    time.Time
	DecidedAt      time.Time
}

type ClaimRepository interface {
	ByID(ctx context.Context, id ClaimID) (*Claim, error)
	ByConversationAndClaimant(ctx context.Context, conversationID ConversationID, claimantID string) (*Claim, error)
	ListByConversation(ctx context.Context, conversationID ConversationID) ([]*Claim, error)
	Save(ctx context.Context, claim *Claim) error
	// SaveAll persists the whole set atomically; the approve path uses it so a
	// concurrent second approval cannot yield two approved claimants.
	SaveAll(ctx context.Context, claims []*Claim) error
}

type SubmitClaimParams struct {
	ID             ClaimID
	ConversationID ConversationID
	ClaimantID     string
	Answers        ClaimAnswers
	Now            time.Time
}

func SubmitClaim(params SubmitClaimParams) (*Claim, error) {
	if strings.TrimSpace(params.ClaimantID) == "" {
		return nil, fault.InvalidOperation("negotiation: claimant id is required")
	}
	return &Claim{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		ClaimantID:     params.ClaimantID,
		Answers:        params.Answers,
		Approval:       ClaimPending,
		SubmittedAt:    params.Now.UTC(),
	}, nil
}

func (cl *Claim) Approve(now time.Time) error {
	if cl.Approval != ClaimPending {
		return ErrClaimDecided
	}
	cl.Approval = ClaimApproved
	cl.DecidedAt = now.UTC()
	return nil
}

func (cl *Claim) Reject(now time.Time) error {
	if cl.Approval != ClaimPending {
		return ErrClaimDecided
	}
	cl.Approval = ClaimRejected
	cl.DecidedAt = now.UTC()
	return nil
}

// ForceReject marks a sibling claim rejected when another claim wins. Unlike
// Reject it does not fail on an already decided claim.
func (cl *Claim) ForceReject(now time.Time) {
	if cl.Approval == ClaimRejected {
		return
	}
	cl.Approval = ClaimRejected
	cl.DecidedAt = now.UTC()
}
