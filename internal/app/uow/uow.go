package uow

import (
	"context"
	"errors"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

var (
	// ErrConcurrentUpdate signals a lost optimistic compare-and-swap. The
	// accept/instant-create path retries it exactly once with fresh reads.
	ErrConcurrentUpdate = errors.New("uow: concurrent update detected")
	// ErrPersistence wraps every failure of the storage collaborator. The
	// engine propagates it unchanged; the caller owns retry policy.
	ErrPersistence = errors.New("uow: persistence failure")
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Calendars() domainavailability.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
