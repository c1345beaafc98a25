package uow

import (
	"context"

	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Conversations() domainnegotiation.Repository
	Messages() domainnegotiation.MessageRepository
	Claims() domainnegotiation.ClaimRepository
	Reviews() domainreviews.Repository
	Users() domainusers.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
