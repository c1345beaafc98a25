package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// ListingRepository is an in-memory implementation for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return listing, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainlistings.Listing
	for _, listing := range r.items {
		if listing.Owner == owner {
			out = append(out, listing)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ConversationRepository holds conversation aggregates keyed by id.
type ConversationRepository struct {
	mu    sync.RWMutex
	items map[domainnegotiation.ConversationID]*domainnegotiation.Conversation
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{items: make(map[domainnegotiation.ConversationID]*domainnegotiation.Conversation)}
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainnegotiation.ConversationID) (*domainnegotiation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.items[id]
	if !ok {
		return nil, domainnegotiation.ErrNotFound
	}
	return conversation, nil
}

func (r *ConversationRepository) Save(ctx context.Context, conversation *domainnegotiation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conversation.ID] = conversation
	return nil
}

func (r *ConversationRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domainnegotiation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainnegotiation.Conversation
	for _, conversation := range r.items {
		if conversation.IsParticipant(participantID) {
			out = append(out, conversation)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// MessageRepository keeps per-conversation append-only logs.
type MessageRepository struct {
	mu   sync.RWMutex
	logs map[domainnegotiation.ConversationID][]*domainnegotiation.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{logs: make(map[domainnegotiation.ConversationID][]*domainnegotiation.Message)}
}

func (r *MessageRepository) Append(ctx context.Context, message *domainnegotiation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[message.ConversationID] = append(r.logs[message.ConversationID], message)
	return nil
}

// List pages oldest-first; the cursor is the id of the last returned message.
func (r *MessageRepository) List(ctx context.Context, conversationID domainnegotiation.ConversationID, limit int, cursor string) (domainnegotiation.MessagePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log := r.logs[conversationID]
	start := 0
	if cursor != "" {
		for i, message := range log {
			if string(message.ID) == cursor {
				start = i + 1
				break
			}
		}
	}
	if start >= len(log) {
		return domainnegotiation.MessagePage{}, nil
	}
	end := start + limit
	if end > len(log) {
		end = len(log)
	}
	page := domainnegotiation.MessagePage{Items: append([]*domainnegotiation.Message(nil), log[start:end]...)}
	if end < len(log) {
		page.NextCursor = string(log[end-1].ID)
	}
	return page, nil
}

// ClaimRepository stores lost-and-found claims keyed by id.
type ClaimRepository struct {
	mu    sync.RWMutex
	items map[domainnegotiation.ClaimID]*domainnegotiation.Claim
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{items: make(map[domainnegotiation.ClaimID]*domainnegotiation.Claim)}
}

func (r *ClaimRepository) ByID(ctx context.Context, id domainnegotiation.ClaimID) (*domainnegotiation.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	claim, ok := r.items[id]
	if !ok {
		return nil, domainnegotiation.ErrClaimNotFound
	}
	return claim, nil
}

func (r *ClaimRepository) ByConversationAndClaimant(ctx context.Context, conversationID domainnegotiation.ConversationID, claimantID string) (*domainnegotiation.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, claim := range r.items {
		if claim.ConversationID == conversationID && claim.ClaimantID == claimantID {
			return claim, nil
		}
	}
	return nil, domainnegotiation.ErrClaimNotFound
}

func (r *ClaimRepository) ListByConversation(ctx context.Context, conversationID domainnegotiation.ConversationID) ([]*domainnegotiation.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainnegotiation.Claim
	for _, claim := range r.items {
		if claim.ConversationID == conversationID {
			out = append(out, claim)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *ClaimRepository) Save(ctx context.Context, claim *domainnegotiation.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[claim.ID] = claim
	return nil
}

func (r *ClaimRepository) SaveAll(ctx context.Context, claims []*domainnegotiation.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, claim := range claims {
		r.items[claim.ID] = claim
	}
	return nil
}

// ReviewRepository stores reviews keyed by (conversation, reviewer).
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[string]*domainreviews.Review)}
}

func reviewKey(conversationID domainnegotiation.ConversationID, reviewerID string) string {
	return strings.Join([]string{string(conversationID), reviewerID}, "|")
}

func (r *ReviewRepository) ByConversationAndReviewer(ctx context.Context, conversationID domainnegotiation.ConversationID, reviewerID string) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[reviewKey(conversationID, reviewerID)]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review, nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreviews.Review
	for _, review := range r.items {
		if review.RevieweeID == revieweeID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[reviewKey(review.ConversationID, review.ReviewerID)] = review
	return nil
}

// UserRepository stores user profiles keyed by id.
type UserRepository struct {
	mu    sync.RWMutex
	items map[domainusers.UserID]*domainusers.Profile
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[domainusers.UserID]*domainusers.Profile)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainusers.UserID) (*domainusers.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.items[id]
	if !ok {
		return nil, domainusers.ErrNotFound
	}
	return profile, nil
}

func (r *UserRepository) Save(ctx context.Context, profile *domainusers.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[profile.ID] = profile
	return nil
}
