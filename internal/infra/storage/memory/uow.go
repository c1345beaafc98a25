package memory

import (
	"context"
	"errors"

	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo      domainlistings.Repository
	ConversationsRepo domainnegotiation.Repository
	MessagesRepo      domainnegotiation.MessageRepository
	ClaimsRepo        domainnegotiation.ClaimRepository
	ReviewsRepo       domainreviews.Repository
	UsersRepo         domainusers.Repository
}

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		ListingsRepo:      NewListingRepository(),
		ConversationsRepo: NewConversationRepository(),
		MessagesRepo:      NewMessageRepository(),
		ClaimsRepo:        NewClaimRepository(),
		ReviewsRepo:       NewReviewRepository(),
		UsersRepo:         NewUserRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.ConversationsRepo == nil || f.MessagesRepo == nil ||
		f.ClaimsRepo == nil || f.ReviewsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:      f.ListingsRepo,
		conversations: f.ConversationsRepo,
		messages:      f.MessagesRepo,
		claims:        f.ClaimsRepo,
		reviews:       f.ReviewsRepo,
		users:         f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings      domainlistings.Repository
	conversations domainnegotiation.Repository
	messages      domainnegotiation.MessageRepository
	claims        domainnegotiation.ClaimRepository
	reviews       domainreviews.Repository
	users         domainusers.Repository
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Conversations() domainnegotiation.Repository {
	return u.conversations
}

func (u *Unit) Messages() domainnegotiation.MessageRepository {
	return u.messages
}

func (u *Unit) Claims() domainnegotiation.ClaimRepository {
	return u.claims
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Users() domainusers.Repository {
	return u.users
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
