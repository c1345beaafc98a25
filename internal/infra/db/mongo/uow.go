package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo      domainlistings.Repository
	ConversationsRepo domainnegotiation.Repository
	MessagesRepo      domainnegotiation.MessageRepository
	ClaimsRepo        domainnegotiation.ClaimRepository
	ReviewsRepo       domainreviews.Repository
	UsersRepo         domainusers.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:            f.DB,
		session:       session,
		listings:      f.ListingsRepo,
		conversations: f.ConversationsRepo,
		messages:      f.MessagesRepo,
		claims:        f.ClaimsRepo,
		reviews:       f.ReviewsRepo,
		users:         f.UsersRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
