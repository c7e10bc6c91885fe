package booking

import (
	"context"

	"staybook/internal/app/uow"
)

// execContext binds the unit of work to the context so transactional
// backends (Mongo sessions) see every repository call inside the
// transaction. Memory units have no injector and pass through.
func execContext(ctx context.Context, unit uow.UnitOfWork) context.Context {
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	return uow.ContextWithUnitOfWork(ctx, unit)
}
