package dto

import (
	"time"

	domainnegotiation "tradepost/internal/domain/negotiation"
)

// Claim is a lost-and-found ownership assertion payload.
type Claim struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	ClaimantID     string     `json:"claimant_id"`
	When           string     `json:"when,omitempty"`
	Where          string     `json:"where,omitempty"`
	Details        string     `json:"details,omitempty"`
	Approval       string     `json:"approval"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

func MapClaim(cl *domainnegotiation.Claim) Claim {
	if cl == nil {
		return Claim{}
	}
	out := Claim{
		ID:             string(cl.ID),
		ConversationID: string(cl.ConversationID),
		ClaimantID:     cl.ClaimantID,
		When:           cl.Answers.When,
		Where:          cl.Answers.Where,
		Details:        cl.Answers.Details,
		Approval:       string(cl.Approval),
		SubmittedAt:    cl.SubmittedAt,
	}
	if !cl.DecidedAt.IsZero() {
		decided := cl.DecidedAt
		out.DecidedAt = &decided
	}
	return out
}
