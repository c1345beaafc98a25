package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitClaimStartsPending(t *testing.T) {
	claim, err := SubmitClaim(SubmitClaimParams{
		ID:             "c1",
		ConversationID: "conv1",
		ClaimantID:     "bob",
		Answers:        ClaimAnswers{When: "last monday", Where: "platform 4"},
		Now:            time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, ClaimPending, claim.Approval)
	require.True(t, claim.DecidedAt.IsZero())
}

func TestSubmitClaimRequiresClaimant(t *testing.T) {
	_, err := SubmitClaim(SubmitClaimParams{ID: "c1", ConversationID: "conv1", ClaimantID: "  "})
	require.Error(t, err)
}

func TestClaimIsDecidedExactlyOnce(t *testing.T) {
	now := time.Now()
	claim := &Claim{ID: "c1", Approval: ClaimPending}
	require.NoError(t, claim.Approve(now))
	require.Equal(t, ClaimApproved, claim.Approval)

	require.ErrorIs(t, claim.Approve(now), ErrClaimDecided)
	require.ErrorIs(t, claim.Reject(now), ErrClaimDecided)
}

func TestForceRejectOverridesPendingAndApproved(t *testing.T) {
	now := time.Now()

	pending := &Claim{ID: "c1", Approval: ClaimPending}
	pending.ForceReject(now)
	require.Equal(t, ClaimRejected, pending.Approval)

	approved := &Claim{ID: "c2", Approval: ClaimApproved}
	approved.ForceReject(now)
	require.Equal(t, ClaimRejected, approved.Approval)
}

func TestNewMessageTrimsAndClassifies(t *testing.T) {
	now := time.Now()
	_, err := NewMessage(NewMessageParams{ID: "m1", ConversationID: "conv1", SenderID: "bob", Body: "   "})
	require.ErrorIs(t, err, ErrEmptyMessage)

	message, err := NewMessage(NewMessageParams{ID: "m1", ConversationID: "conv1", SenderID: "bob", Body: "  hi  ", Now: now})
	require.NoError(t, err)
	require.Equal(t, "hi", message.Body)
	require.Equal(t, KindText, message.Kind)

	system, err := NewMessage(NewMessageParams{ID: "m2", ConversationID: "conv1", SenderID: SystemSender, Body: "Deal marked as complete", Kind: KindText, Now: now})
	require.NoError(t, err)
	require.Equal(t, KindSystem, system.Kind)
}
