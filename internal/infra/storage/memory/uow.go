package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

// ErrFactoryMisconfigured indicates a missing backing store.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires the in-memory store into a unit-of-work boundary. No
// isolation is provided; the optimistic version checks on save carry the
// concurrency guarantees instead.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{store: f.Store}, nil
}

type Unit struct {
	store *Store
}

func (u *Unit) Properties() domainproperty.Repository { return u.store.Properties() }

func (u *Unit) Bookings() domainbooking.Repository { return u.store.Bookings() }

func (u *Unit) Calendars() domainavailability.Repository { return u.store.Calendars() }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.Factory = Factory{}
