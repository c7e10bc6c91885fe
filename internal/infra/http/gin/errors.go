package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

// respondError translates domain failures into HTTP statuses. Conflicting
// date ranges are attached to 409 responses so clients can offer
// alternative dates.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var conflict *domainavailability.ConflictError
	if errors.As(err, &conflict) {
		ranges := make([]string, 0, len(conflict.Conflicts))
		for _, r := range conflict.Conflicts {
			ranges = append(ranges, r.String())
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "conflicts": ranges})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainavailability.ErrDateUnavailable):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrIllegalTransition),
		errors.Is(err, domainbooking.ErrInvalidCancellation):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, bookingapp.ErrActorNotParty):
		return http.StatusNotFound
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainproperty.ErrInvalidStayRequest),
		errors.Is(err, domainpricing.ErrInvalidPricingInput),
		errors.Is(err, domainbooking.ErrInvalidGuests):
		return http.StatusUnprocessableEntity
	case errors.Is(err, uow.ErrConcurrentUpdate),
		errors.Is(err, uow.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
