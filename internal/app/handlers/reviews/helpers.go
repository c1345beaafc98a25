package reviews

import (
	"context"
	"errors"
	"time"

	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// checkEligibility enforces the review gate: completed deal, reviewer is the
// non-owner participant, and no prior review for this conversation.
func checkEligibility(ctx context.Context, unit uow.UnitOfWork, conversation *domainnegotiation.Conversation, reviewerID string) error {
	if !conversation.IsParticipant(reviewerID) {
		return domainnegotiation.ErrNotParticipant
	}
	if reviewerID == conversation.Owner {
		return ErrOwnerExcluded
	}
	if conversation.Status != domainnegotiation.StatusCompleted {
		return ErrDealNotCompleted
	}
	existing, err := unit.Reviews().ByConversationAndReviewer(ctx, conversation.ID, reviewerID)
	if err == nil && existing != nil {
		return domainreviews.ErrDuplicate
	}
	if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return err
	}
	return nil
}

// recalculateTrust replaces the reviewee's aggregate with the mean rating
// over all their reviews. Runs inside the caller's unit of work so concurrent
// submissions for the same reviewee serialize on the profile document.
func recalculateTrust(ctx context.Context, unit uow.UnitOfWork, revieweeID string, now time.Time) error {
	all, err := unit.Reviews().ListByReviewee(ctx, revieweeID)
	if err != nil {
		return err
	}
	score := domainreviews.TrustScore(all)

	profile, err := unit.Users().ByID(ctx, domainusers.UserID(revieweeID))
	if err != nil {
		if !errors.Is(err, domainusers.ErrNotFound) {
			return err
		}
		profile = &domainusers.Profile{ID: domainusers.UserID(revieweeID), CreatedAt: now.UTC()}
	}
	profile.SetTrust(score, len(all), now)
	return unit.Users().Save(ctx, profile)
}
