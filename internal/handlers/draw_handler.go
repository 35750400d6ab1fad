package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/prizedraw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

const maxHistoryLimit = 100

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService      services.DrawService
	countdownService services.CountdownService
	defaultCountdown int
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService, countdownService services.CountdownService, defaultCountdown int) *DrawHandler {
	return &DrawHandler{
		drawService:      drawService,
		countdownService: countdownService,
		defaultCountdown: defaultCountdown,
	}
}

// TokenRequest carries the ticket token returned by start
type TokenRequest struct {
	Token string `json:"token"`
}

// RunDrawRequest optionally overrides the configured countdown
type RunDrawRequest struct {
	CountdownSeconds *int `json:"countdownSeconds" binding:"omitempty,min=0,max=60"`
}

// GetState handles GET /state
func (h *DrawHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.drawService.QueryState(c.Request.Context()))
}

// StartDraw handles POST /draws/:tier/start
func (h *DrawHandler) StartDraw(c *gin.Context) {
	ticket, err := h.drawService.StartDraw(c.Request.Context(), c.Param("tier"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// FinalizeDraw handles POST /draws/:tier/finalize
func (h *DrawHandler) FinalizeDraw(c *gin.Context) {
	var req TokenRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier := c.Param("tier")
	winners, err := h.drawService.FinalizeDraw(c.Request.Context(), tier, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": tier, "winners": winners})
}

// CancelDraw handles POST /draws/:tier/cancel
func (h *DrawHandler) CancelDraw(c *gin.Context) {
	var req TokenRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier := c.Param("tier")
	if err := h.drawService.CancelDraw(c.Request.Context(), tier, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draw cancelled", "tier": tier})
}

// RunDraw handles POST /draws/:tier/run. The request stays open for the
// countdown; if the client goes away the draw is cancelled.
func (h *DrawHandler) RunDraw(c *gin.Context) {
	var req RunDrawRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	countdown := h.defaultCountdown
	if req.CountdownSeconds != nil {
		countdown = *req.CountdownSeconds
	}

	tier := c.Param("tier")
	winners, err := h.countdownService.RunDraw(c.Request.Context(), tier, countdown)
	if err != nil {
		if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			c.Error(err)
			c.Status(499) // Client closed request
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": tier, "winners": winners})
}

// GetHistory handles GET /draws/history
func (h *DrawHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = n
	}
	if limit == 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.drawService.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": records})
}
