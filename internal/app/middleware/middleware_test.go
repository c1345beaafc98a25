package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/middleware"
	"tradepost/internal/app/uow"
	"tradepost/internal/infra/storage/memory"
)

type echoCommand struct {
	Key_ string
	Idem string
	Text string
}

func (c echoCommand) Key() string { return c.Key_ }

func (c echoCommand) IdempotencyKey() string { return c.Idem }

func (c echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Text string `json:"text"`
}

type recordingUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
}

func (u *recordingUnit) Commit(ctx context.Context) error {
	u.committed = true
	return nil
}

func (u *recordingUnit) Rollback(ctx context.Context) error {
	u.rolledBack = true
	return nil
}

type recordingFactory struct {
	units []*recordingUnit
}

func (f *recordingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit := &recordingUnit{}
	f.units = append(f.units, unit)
	return unit, nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return &echoResult{Text: cmd.(echoCommand).Text}, nil
	})
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	first, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo", Idem: "k1", Text: "hello"})
	require.NoError(t, err)

	second, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo", Idem: "k1", Text: "changed"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.(*echoResult).Text, second.(*echoResult).Text)
}

func TestIdempotencyCachesFailures(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return nil, errors.New("downstream unavailable")
	})
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo", Idem: "boom"})
	require.Error(t, err)

	_, err = bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo", Idem: "boom"})
	require.EqualError(t, err, "downstream unavailable")
	assert.Equal(t, 1, calls)
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return &echoResult{Text: "ok"}, nil
	})
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	base := commands.NewInMemoryBus()
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		_, ok := uow.FromContext(ctx)
		assert.True(t, ok)
		return &echoResult{}, nil
	})
	factory := &recordingFactory{}
	bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo"})
	require.NoError(t, err)

	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
}

func TestTransactionRollsBackOnHandlerError(t *testing.T) {
	base := commands.NewInMemoryBus()
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		return nil, errors.New("handler failed")
	})
	factory := &recordingFactory{}
	bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo"})
	require.Error(t, err)

	require.Len(t, factory.units, 1)
	assert.False(t, factory.units[0].committed)
	assert.True(t, factory.units[0].rolledBack)
}

func TestChainOrderOutermostFirst(t *testing.T) {
	base := commands.NewInMemoryBus()
	var trace []string
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		trace = append(trace, "handler")
		return &echoResult{}, nil
	})
	tag := func(name string) middleware.CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return busFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				trace = append(trace, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	bus := middleware.ChainCommands(base, tag("outer"), tag("inner"))

	_, err := bus.Dispatch(context.Background(), echoCommand{Key_: "test.echo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

type busFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f busFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}
