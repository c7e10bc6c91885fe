package memory

import (
	"context"
	"sync"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/events"
)

// Store keeps every collection behind one lock so the optimistic version
// checks observe a consistent snapshot. It backs tests and the demo binary.
type Store struct {
	mu         sync.RWMutex
	properties map[domainproperty.PropertyID]*domainproperty.Property
	bookings   map[domainbooking.BookingID]*domainbooking.Booking
	calendars  map[domainproperty.PropertyID]*domainavailability.Calendar
}

func NewStore() *Store {
	return &Store{
		properties: make(map[domainproperty.PropertyID]*domainproperty.Property),
		bookings:   make(map[domainbooking.BookingID]*domainbooking.Booking),
		calendars:  make(map[domainproperty.PropertyID]*domainavailability.Calendar),
	}
}

// PropertyRepository implements domainproperty.Repository.
type PropertyRepository struct{ store *Store }

func (s *Store) Properties() *PropertyRepository { return &PropertyRepository{store: s} }

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.properties[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	clone := *p
	return &clone, nil
}

// Save stores the property and seeds its availability calendar with the
// host-blocked dates when none exists yet.
func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *p
	r.store.properties[p.ID] = &clone
	if _, ok := r.store.calendars[p.ID]; !ok {
		r.store.calendars[p.ID] = domainavailability.NewCalendar(p)
	}
	return nil
}

// BookingRepository implements domainbooking.Repository with optimistic
// version checks.
type BookingRepository struct{ store *Store }

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{store: s} }

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.bookings[b.ID]; ok && existing.Version != b.Version {
		return uow.ErrConcurrentUpdate
	}
	b.Version++
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if b.PropertyID == id {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainproperty.HostID) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if b.HostID == hostID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

// CalendarRepository implements domainavailability.Repository. The version
// check on save is the compare-and-swap that serializes concurrent accepts
// per property.
type CalendarRepository struct{ store *Store }

func (s *Store) Calendars() *CalendarRepository { return &CalendarRepository{store: s} }

func (r *CalendarRepository) Calendar(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.Calendar, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if c, ok := r.store.calendars[id]; ok {
		return cloneCalendar(c), nil
	}
	// No projection yet: derive it from the property and its confirmed bookings.
	p, ok := r.store.properties[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	var stays []domainavailability.ConfirmedStay
	for _, b := range r.store.bookings {
		if b.PropertyID == id && b.Status == domainbooking.StatusConfirmed {
			stays = append(stays, domainavailability.ConfirmedStay{
				BookingID: string(b.ID),
				GuestID:   b.GuestID,
				Range:     b.Range,
			})
		}
	}
	return domainavailability.Rebuild(p, stays), nil
}

func (r *CalendarRepository) Save(ctx context.Context, c *domainavailability.Calendar) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.calendars[c.PropertyID]; ok && existing.Version != c.Version {
		return uow.ErrConcurrentUpdate
	}
	c.Version++
	r.store.calendars[c.PropertyID] = cloneCalendar(c)
	return nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := *b
	clone.EventRecorder = events.EventRecorder{}
	if b.Cancellation != nil {
		c := *b.Cancellation
		clone.Cancellation = &c
	}
	return &clone
}

func cloneCalendar(c *domainavailability.Calendar) *domainavailability.Calendar {
	clone := *c
	clone.Blocks = append([]domainavailability.Block(nil), c.Blocks...)
	return &clone
}
