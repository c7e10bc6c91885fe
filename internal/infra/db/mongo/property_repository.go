package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	return doc.toSnapshot(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", uow.ErrPersistence, err)
	}
	return nil
}

type propertyDocument struct {
	ID           string          `bson:"_id"`
	HostID       string          `bson:"host_id"`
	Title        string          `bson:"title"`
	MaxGuests    int             `bson:"max_guests"`
	MinimumStay  int             `bson:"minimum_stay"`
	MaximumStay  int             `bson:"maximum_stay,omitempty"`
	InstantBook  bool            `bson:"instant_book"`
	PolicyID     string          `bson:"cancellation_policy_id"`
	Pricing      pricingDocument `bson:"pricing"`
	BlockedDates []Timestamp     `bson:"blocked_dates,omitempty"`
	CreatedAt    Timestamp       `bson:"created_at"`
	UpdatedAt    Timestamp       `bson:"updated_at"`
}

type pricingDocument struct {
	BasePricePerNight      int64  `bson:"base_price_per_night"`
	CleaningFee            int64  `bson:"cleaning_fee"`
	WeeklyDiscountPercent  int    `bson:"weekly_discount_percent"`
	MonthlyDiscountPercent int    `bson:"monthly_discount_percent"`
	Currency               string `bson:"currency"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	doc := propertyDocument{
		ID:          string(p.ID),
		HostID:      string(p.Host),
		Title:       p.Title,
		MaxGuests:   p.MaxGuests,
		MinimumStay: p.MinimumStay,
		MaximumStay: p.MaximumStay,
		InstantBook: p.InstantBook,
		PolicyID:    p.CancellationPolicyID,
		Pricing: pricingDocument{
			BasePricePerNight:      p.Pricing.BasePricePerNight.Amount,
			CleaningFee:            p.Pricing.CleaningFee.Amount,
			WeeklyDiscountPercent:  p.Pricing.WeeklyDiscountPercent,
			MonthlyDiscountPercent: p.Pricing.MonthlyDiscountPercent,
			Currency:               p.Pricing.BasePricePerNight.Currency,
		},
		CreatedAt: NewTimestamp(p.CreatedAt),
		UpdatedAt: NewTimestamp(p.UpdatedAt),
	}
	for _, d := range p.BlockedDates {
		doc.BlockedDates = append(doc.BlockedDates, NewTimestamp(d))
	}
	return doc
}

func (d propertyDocument) toSnapshot() *domainproperty.Property {
	blocked := make([]time.Time, 0, len(d.BlockedDates))
	for _, b := range d.BlockedDates {
		blocked = append(blocked, b.Time())
	}
	return &domainproperty.Property{
		ID:                   domainproperty.PropertyID(d.ID),
		Host:                 domainproperty.HostID(d.HostID),
		Title:                d.Title,
		MaxGuests:            d.MaxGuests,
		MinimumStay:          d.MinimumStay,
		MaximumStay:          d.MaximumStay,
		InstantBook:          d.InstantBook,
		CancellationPolicyID: d.PolicyID,
		Pricing: domainproperty.PricingConfig{
			BasePricePerNight:      money.Money{Amount: d.Pricing.BasePricePerNight, Currency: d.Pricing.Currency},
			CleaningFee:            money.Money{Amount: d.Pricing.CleaningFee, Currency: d.Pricing.Currency},
			WeeklyDiscountPercent:  d.Pricing.WeeklyDiscountPercent,
			MonthlyDiscountPercent: d.Pricing.MonthlyDiscountPercent,
		},
		BlockedDates: blocked,
		CreatedAt:    d.CreatedAt.Time(),
		UpdatedAt:    d.UpdatedAt.Time(),
	}
}
