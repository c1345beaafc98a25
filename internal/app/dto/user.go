package dto

import (
	"time"

	domainusers "tradepost/internal/domain/users"
)

// UserProfile is the public profile payload with the trust aggregate.
type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	PostCount   int       `json:"post_count"`
	TrustScore  float64   `json:"trust_score"`
	ReviewCount int       `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapUserProfile(p *domainusers.Profile) UserProfile {
	if p == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		PostCount:   p.PostCount,
		TrustScore:  p.TrustScore,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
	}
}
