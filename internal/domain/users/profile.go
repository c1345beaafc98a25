package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("users: profile not found")

type UserID string

// Profile is the server-side view of a marketplace user: the post counter
// listings maintain and the trust aggregate reviews recompute.
type Profile struct {
	ID          UserID
	DisplayName string
	PostCount   int
	TrustScore  float64
	ReviewCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id UserID) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
}

func (p *Profile) IncrementPosts(now time.Time) {
	p.PostCount++
	p.UpdatedAt = now.UTC()
}

func (p *Profile) DecrementPosts(now time.Time) {
	if p.PostCount > 0 {
		p.PostCount--
	}
	p.UpdatedAt = now.UTC()
}

// SetTrust replaces the trust aggregate after a review recomputation.
func (p *Profile) SetTrust(score float64, count int, now time.Time) {
	p.TrustScore = score
	p.ReviewCount = count
	p.UpdatedAt = now.UTC()
}
