package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Quote prices a prospective stay without creating anything.
func (h PricingHandler) Quote(c *gin.Context) {
	checkIn, err := time.Parse("2006-01-02", c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse("2006-01-02", c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be YYYY-MM-DD"})
		return
	}
	adults, err := strconv.Atoi(c.DefaultQuery("adults", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid adults"})
		return
	}
	children, err := strconv.Atoi(c.DefaultQuery("children", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid children"})
		return
	}

	query := pricingapp.QuoteStayQuery{
		PropertyID: strings.TrimSpace(c.Param("id")),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     adults,
		Children:   children,
	}
	result, err := queries.Ask[pricingapp.QuoteStayQuery, dto.PriceBreakdownDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
