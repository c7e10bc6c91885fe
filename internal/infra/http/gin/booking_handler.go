package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	domainbooking "staybook/internal/domain/booking"
)

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	Infants    int       `json:"infants"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		respondError(c, h.Logger, errors.New("commands bus unavailable"))
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:  uuid.NewString(),
		PropertyID: strings.TrimSpace(req.PropertyID),
		GuestID:    strings.TrimSpace(req.GuestID),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Adults:     req.Adults,
		Children:   req.Children,
		Infants:    req.Infants,
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type hostActionRequest struct {
	HostID string `json:"host_id"`
}

func (h BookingHandler) Accept(c *gin.Context) {
	var req hostActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.AcceptBookingCommand{
		HostID:    strings.TrimSpace(req.HostID),
		BookingID: strings.TrimSpace(c.Param("id")),
	}
	result, err := commands.Dispatch[bookingapp.AcceptBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Decline(c *gin.Context) {
	var req hostActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.DeclineBookingCommand{
		HostID:    strings.TrimSpace(req.HostID),
		BookingID: strings.TrimSpace(c.Param("id")),
	}
	result, err := commands.Dispatch[bookingapp.DeclineBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	ActorID string `json:"actor_id"`
	Actor   string `json:"actor"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := domainbooking.Actor(strings.ToLower(strings.TrimSpace(req.Actor)))
	if actor != domainbooking.ActorGuest && actor != domainbooking.ActorHost {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor must be guest or host"})
		return
	}
	cmd := bookingapp.CancelBookingCommand{
		BookingID: strings.TrimSpace(c.Param("id")),
		ActorID:   strings.TrimSpace(req.ActorID),
		Actor:     actor,
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	cmd := bookingapp.CompleteBookingCommand{
		BookingID: strings.TrimSpace(c.Param("id")),
	}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
