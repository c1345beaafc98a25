package reviews

import (
	"context"
	"sort"
	"strings"

	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	"tradepost/internal/domain/shared/fault"
)

const listReviewsKey = "reviews.list"

// ListRevieweeReviewsQuery returns reviews received by a user, newest first.
type ListRevieweeReviewsQuery struct {
	RevieweeID string
}

func (q ListRevieweeReviewsQuery) Key() string { return listReviewsKey }

type ListRevieweeReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRevieweeReviewsHandler) Handle(ctx context.Context, q ListRevieweeReviewsQuery) (dto.ReviewCollection, error) {
	reviewee := strings.TrimSpace(q.RevieweeID)
	if reviewee == "" {
		return dto.ReviewCollection{}, fault.InvalidOperation("reviews: reviewee id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Reviews().ListByReviewee(execCtx, reviewee)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	collection := dto.ReviewCollection{Items: make([]dto.Review, 0, len(items)), Total: len(items)}
	for _, review := range items {
		collection.Items = append(collection.Items, dto.MapReview(review))
	}
	return collection, nil
}

var _ queries.Handler[ListRevieweeReviewsQuery, dto.ReviewCollection] = (*ListRevieweeReviewsHandler)(nil)
