package reviews

import (
	"context"

	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const reviewEligibilityKey = "reviews.eligibility"

// ReviewEligibilityQuery is the server-authoritative "may I review this
// conversation" check; clients may cache the answer but never own it.
type ReviewEligibilityQuery struct {
	ConversationID string
	ReviewerID     string
}

func (q ReviewEligibilityQuery) Key() string { return reviewEligibilityKey }

type ReviewEligibilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ReviewEligibilityHandler) Handle(ctx context.Context, q ReviewEligibilityQuery) (dto.ReviewEligibility, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewEligibility{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(q.ConversationID))
	if err != nil {
		return dto.ReviewEligibility{}, err
	}
	if err := checkEligibility(execCtx, unit, conversation, q.ReviewerID); err != nil {
		if fault.KindOf(err) == fault.KindUnknown {
			return dto.ReviewEligibility{}, err
		}
		return dto.ReviewEligibility{Eligible: false, Reason: err.Error()}, nil
	}
	return dto.ReviewEligibility{Eligible: true}, nil
}

var _ queries.Handler[ReviewEligibilityQuery, dto.ReviewEligibility] = (*ReviewEligibilityHandler)(nil)
