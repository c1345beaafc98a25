package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	"tradepost/internal/domain/shared/fault"
)

const submitReviewKey = "reviews.submit"

var (
	ErrDealNotCompleted = fault.Wrap(fault.KindInvalidOperation, errors.New("reviews: conversation is not completed"))
	ErrOwnerExcluded    = fault.Wrap(fault.KindForbidden, errors.New("reviews: the listing owner cannot review the deal"))
)

// SubmitReviewCommand rates the other party of a completed negotiation.
type SubmitReviewCommand struct {
	ConversationID string
	ReviewerID     string
	Rating         int
	Text           string
	Now            time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler validates eligibility, stores the review and recomputes
// the reviewee's trust score inside the same unit of work.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	reviewer := strings.TrimSpace(cmd.ReviewerID)
	if reviewer == "" {
		return dto.Review{}, fault.InvalidOperation("reviews: reviewer id is required")
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Review{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(cmd.ConversationID))
	if err != nil {
		return dto.Review{}, err
	}
	if err := checkEligibility(execCtx, unit, conversation, reviewer); err != nil {
		return dto.Review{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:             domainreviews.ReviewID(uuid.NewString()),
		ConversationID: conversation.ID,
		ReviewerID:     reviewer,
		RevieweeID:     conversation.OtherParticipant(reviewer),
		Rating:         cmd.Rating,
		Text:           cmd.Text,
		CreatedAt:      now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(execCtx, review); err != nil {
		return dto.Review{}, err
	}

	if err := recalculateTrust(execCtx, unit, review.RevieweeID, now); err != nil {
		return dto.Review{}, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return dto.Review{}, err
		}
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "conversation_id", conversation.ID, "reviewer_id", reviewer, "reviewee_id", review.RevieweeID, "rating", cmd.Rating)
	}

	return dto.MapReview(review), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
