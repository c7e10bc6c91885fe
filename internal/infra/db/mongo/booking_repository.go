package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"property_id": string(id)})
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainproperty.HostID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"host_id": string(hostID)})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
		}
		out = append(out, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	return out, nil
}

type bookingDocument struct {
	ID           string                `bson:"_id"`
	PropertyID   string                `bson:"property_id"`
	HostID       string                `bson:"host_id"`
	GuestID      string                `bson:"guest_id"`
	CheckIn      Timestamp             `bson:"check_in"`
	CheckOut     Timestamp             `bson:"check_out"`
	Adults       int                   `bson:"adults"`
	Children     int                   `bson:"children"`
	Infants      int                   `bson:"infants"`
	Status       string                `bson:"status"`
	PolicyID     string                `bson:"policy_id"`
	Price        priceDocument         `bson:"price"`
	Cancellation *cancellationDocument `bson:"cancellation,omitempty"`
	CreatedAt    Timestamp             `bson:"created_at"`
	UpdatedAt    Timestamp             `bson:"updated_at"`
	Version      int64                 `bson:"version"`
}

type priceDocument struct {
	Nights          int    `bson:"nights"`
	NightlyRate     int64  `bson:"nightly_rate"`
	Subtotal        int64  `bson:"subtotal"`
	DiscountPercent int    `bson:"discount_percent"`
	DiscountAmount  int64  `bson:"discount_amount"`
	CleaningFee     int64  `bson:"cleaning_fee"`
	GuestServiceFee int64  `bson:"guest_service_fee"`
	Tax             int64  `bson:"tax"`
	Total           int64  `bson:"total"`
	HostPayout      int64  `bson:"host_payout"`
	Currency        string `bson:"currency"`
}

type cancellationDocument struct {
	At            Timestamp `bson:"at"`
	By            string    `bson:"by"`
	RefundPercent int       `bson:"refund_percent"`
	RefundAmount  int64     `bson:"refund_amount"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		HostID:     string(b.HostID),
		GuestID:    b.GuestID,
		CheckIn:    NewTimestamp(b.Range.CheckIn),
		CheckOut:   NewTimestamp(b.Range.CheckOut),
		Adults:     b.Guests.Adults,
		Children:   b.Guests.Children,
		Infants:    b.Guests.Infants,
		Status:     string(b.Status),
		PolicyID:   b.PolicyID,
		Price:      newPriceDocument(b.Price),
		CreatedAt:  NewTimestamp(b.CreatedAt),
		UpdatedAt:  NewTimestamp(b.UpdatedAt),
		Version:    b.Version,
	}
	if b.Cancellation != nil {
		doc.Cancellation = &cancellationDocument{
			At:            NewTimestamp(b.Cancellation.At),
			By:            string(b.Cancellation.By),
			RefundPercent: b.Cancellation.RefundPercent,
			RefundAmount:  b.Cancellation.RefundAmount,
		}
	}
	return doc
}

func newPriceDocument(p domainpricing.Breakdown) priceDocument {
	return priceDocument{
		Nights:          p.Nights,
		NightlyRate:     p.NightlyRate.Amount,
		Subtotal:        p.Subtotal.Amount,
		DiscountPercent: p.DiscountPercent,
		DiscountAmount:  p.DiscountAmount.Amount,
		CleaningFee:     p.CleaningFee.Amount,
		GuestServiceFee: p.GuestServiceFee.Amount,
		Tax:             p.Tax.Amount,
		Total:           p.Total.Amount,
		HostPayout:      p.HostPayout.Amount,
		Currency:        p.Total.Currency,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	cents := func(amount int64) money.Money {
		return money.Money{Amount: amount, Currency: d.Price.Currency}
	}
	b := &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		PropertyID: domainproperty.PropertyID(d.PropertyID),
		HostID:     domainproperty.HostID(d.HostID),
		GuestID:    d.GuestID,
		Range:      domainrange.DateRange{CheckIn: d.CheckIn.Time(), CheckOut: d.CheckOut.Time()},
		Guests:     domainbooking.Guests{Adults: d.Adults, Children: d.Children, Infants: d.Infants},
		Status:     domainbooking.Status(d.Status),
		PolicyID:   d.PolicyID,
		Price: domainpricing.Breakdown{
			Nights:          d.Price.Nights,
			NightlyRate:     cents(d.Price.NightlyRate),
			Subtotal:        cents(d.Price.Subtotal),
			DiscountPercent: d.Price.DiscountPercent,
			DiscountAmount:  cents(d.Price.DiscountAmount),
			CleaningFee:     cents(d.Price.CleaningFee),
			GuestServiceFee: cents(d.Price.GuestServiceFee),
			Tax:             cents(d.Price.Tax),
			Total:           cents(d.Price.Total),
			HostPayout:      cents(d.Price.HostPayout),
		},
		CreatedAt: d.CreatedAt.Time(),
		UpdatedAt: d.UpdatedAt.Time(),
		Version:   d.Version,
	}
	if d.Cancellation != nil {
		b.Cancellation = &domainbooking.Cancellation{
			At:            d.Cancellation.At.Time(),
			By:            domainbooking.Actor(d.Cancellation.By),
			RefundPercent: d.Cancellation.RefundPercent,
			RefundAmount:  d.Cancellation.RefundAmount,
		}
	}
	return b
}
