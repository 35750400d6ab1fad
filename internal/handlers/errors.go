package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ArowuTest/prizedraw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps engine errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnknownTier):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyDrawn),
		errors.Is(err, services.ErrDrawInProgress),
		errors.Is(err, services.ErrNotInProgress),
		errors.Is(err, services.ErrInsufficientPool):
		status = http.StatusConflict
	case errors.Is(err, services.ErrEmptyRoster):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindOptionalJSON binds a JSON body if one was sent
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
