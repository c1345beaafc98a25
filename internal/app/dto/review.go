package dto

import (
	"time"

	domainreviews "tradepost/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	ReviewerID     string    `json:"reviewer_id"`
	RevieweeID     string    `json:"reviewee_id"`
	Rating         int       `json:"rating"`
	Text           string    `json:"text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

// ReviewEligibility reports whether the caller may review a conversation.
type ReviewEligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:             string(review.ID),
		ConversationID: string(review.ConversationID),
		ReviewerID:     review.ReviewerID,
		RevieweeID:     review.RevieweeID,
		Rating:         review.Rating,
		Text:           review.Text,
		CreatedAt:      review.CreatedAt,
	}
}
