package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

// CalendarRepository persists the per-property availability projection. The
// version filter on save is the compare-and-swap that keeps two concurrent
// accepts from both claiming the same nights.
type CalendarRepository struct {
	col      *mongo.Collection
	props    *PropertyRepository
	bookings *BookingRepository
}

func NewCalendarRepository(db *mongo.Database, props *PropertyRepository, bookings *BookingRepository) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("calendars"), props: props, bookings: bookings}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err == nil {
		return doc.toCalendar(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	return r.rebuild(ctx, id)
}

// rebuild derives the projection from the property and its confirmed
// bookings when no calendar document exists yet.
func (r *CalendarRepository) rebuild(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.Calendar, error) {
	prop, err := r.props.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := r.bookings.ListByProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	var stays []domainavailability.ConfirmedStay
	for _, b := range all {
		if b.Status == domainbooking.StatusConfirmed {
			stays = append(stays, domainavailability.ConfirmedStay{
				BookingID: string(b.ID),
				GuestID:   b.GuestID,
				Range:     b.Range,
			})
		}
	}
	return domainavailability.Rebuild(prop, stays), nil
}

func (r *CalendarRepository) Save(ctx context.Context, c *domainavailability.Calendar) error {
	doc := newCalendarDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uow.ErrConcurrentUpdate
		}
		return fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	CheckIn   Timestamp `bson:"check_in"`
	CheckOut  Timestamp `bson:"check_out"`
	Reason    string    `bson:"reason"`
	BookingID string    `bson:"booking_id,omitempty"`
	GuestID   string    `bson:"guest_id,omitempty"`
	CreatedAt Timestamp `bson:"created_at"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	doc := calendarDocument{ID: string(c.PropertyID), Version: c.Version}
	for _, b := range c.Blocks {
		doc.Blocks = append(doc.Blocks, blockDocument{
			CheckIn:   NewTimestamp(b.Range.CheckIn),
			CheckOut:  NewTimestamp(b.Range.CheckOut),
			Reason:    string(b.Reason),
			BookingID: b.BookingID,
			GuestID:   b.GuestID,
			CreatedAt: NewTimestamp(b.CreatedAt),
		})
	}
	return doc
}

func (d calendarDocument) toCalendar() *domainavailability.Calendar {
	c := &domainavailability.Calendar{PropertyID: domainproperty.PropertyID(d.ID), Version: d.Version}
	for _, b := range d.Blocks {
		c.Blocks = append(c.Blocks, domainavailability.Block{
			Range:     domainrange.DateRange{CheckIn: b.CheckIn.Time(), CheckOut: b.CheckOut.Time()},
			Reason:    domainavailability.BlockReason(b.Reason),
			BookingID: b.BookingID,
			GuestID:   b.GuestID,
			CreatedAt: b.CreatedAt.Time(),
		})
	}
	return c
}
