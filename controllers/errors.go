package controllers

import (
	"net/http"
	"option-explorer/interfaces"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case interfaces.IsValidation(err):
		return http.StatusBadRequest
	case interfaces.IsNoData(err), interfaces.IsEmptySelection(err):
		return http.StatusNotFound
	case interfaces.IsFetchError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
