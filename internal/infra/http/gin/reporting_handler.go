package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	reportingapp "staybook/internal/app/handlers/reporting"
	"staybook/internal/app/queries"
)

type ReportingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ReportingHandler) GuestBookings(c *gin.Context) {
	query := reportingapp.ListGuestBookingsQuery{
		GuestID: strings.TrimSpace(c.Param("id")),
	}
	result, err := queries.Ask[reportingapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReportingHandler) HostBookings(c *gin.Context) {
	query := reportingapp.ListHostBookingsQuery{
		HostID: strings.TrimSpace(c.Param("id")),
		Status: c.Query("status"),
	}
	result, err := queries.Ask[reportingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReportingHandler) HostEarnings(c *gin.Context) {
	query := reportingapp.HostEarningsQuery{
		HostID: strings.TrimSpace(c.Param("id")),
	}
	result, err := queries.Ask[reportingapp.HostEarningsQuery, dto.HostEarnings](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReportingHTTP = ReportingHandler{}
