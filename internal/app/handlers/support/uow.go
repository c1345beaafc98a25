package support

import (
	"context"

	"tradepost/internal/app/uow"
)

// BeginUnit reuses a unit of work already placed in context by the transaction
// middleware, or starts a managed one. The returned commit func is nil when
// the unit is owned by the middleware.
func BeginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(context.Context) error, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, nil, err
	}
	execCtx := injectContext(ctx, newUnit)
	committed := false
	commit := func(c context.Context) error {
		if err := newUnit.Commit(c); err != nil {
			return err
		}
		committed = true
		return nil
	}
	cleanup := func() {
		if !committed {
			_ = newUnit.Rollback(execCtx)
		}
	}
	return newUnit, execCtx, commit, cleanup, nil
}

// BeginReadOnlyUnit starts a read-only unit unless one is already in context.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := injectContext(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

func injectContext(ctx context.Context, unit uow.UnitOfWork) context.Context {
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	return uow.ContextWithUnitOfWork(ctx, unit)
}
