package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/events"
	"tradepost/internal/domain/shared/fault"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound      = errors.New("reviews: not found")
	ErrDuplicate     = fault.Wrap(fault.KindInvalidOperation, errors.New("reviews: review already exists for this conversation"))
)

type ReviewID string

// Review is one participant's rating of the other after a completed deal.
// At most one review exists per (reviewer, conversation).
type Review struct {
	ID             ReviewID
	ConversationID negotiation.ConversationID
	ReviewerID     string
	RevieweeID     string
	Rating         int
	Text           string
	CreatedAt      time.Time
	events.EventRecorder
}

type Repository interface {
	ByConversationAndReviewer(ctx context.Context, conversationID negotiation.ConversationID, reviewerID string) (*Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID             ReviewID
	ConversationID negotiation.ConversationID
	ReviewerID     string
	RevieweeID     string
	Rating         int
	Text           string
	CreatedAt      time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, fault.Wrap(fault.KindInvalidOperation, ErrInvalidRating)
	}
	review := &Review{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		ReviewerID:     params.ReviewerID,
		RevieweeID:     params.RevieweeID,
		Rating:         params.Rating,
		Text:           strings.TrimSpace(params.Text),
		CreatedAt:      params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, ConversationID: review.ConversationID, RevieweeID: review.RevieweeID, Rating: review.Rating, At: review.CreatedAt})
	return review, nil
}

// TrustScore is the mean rating over reviews, rounded to two decimals.
func TrustScore(items []*Review) float64 {
	if len(items) == 0 {
		return 0
	}
	var total int
	for _, review := range items {
		total += review.Rating
	}
	mean := float64(total) / float64(len(items))
	return float64(int(mean*100+0.5)) / 100
}
