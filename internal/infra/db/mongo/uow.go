package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertyRepo *PropertyRepository
	BookingRepo  *BookingRepository
	CalendarRepo *CalendarRepository
}

// NewFactory builds the repository set over one database handle.
func NewFactory(db *mongo.Database) Factory {
	props := NewPropertyRepository(db)
	bookings := NewBookingRepository(db)
	return Factory{
		DB:           db,
		PropertyRepo: props,
		BookingRepo:  bookings,
		CalendarRepo: NewCalendarRepository(db, props, bookings),
	}
}

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
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:    session,
		properties: f.PropertyRepo,
		bookings:   f.BookingRepo,
		calendars:  f.CalendarRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	properties *PropertyRepository
	bookings   *BookingRepository
	calendars  *CalendarRepository
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Calendars() domainavailability.Repository { return u.calendars }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repository calls.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.Factory = Factory{}
