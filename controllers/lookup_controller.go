package controllers

import (
	"net/http"
	"option-explorer/interfaces"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultLookupLimit = 50

// LookupController handles lookup journal endpoints
type LookupController struct {
	recorder interfaces.LookupRecorder
}

// NewLookupController creates a new lookup controller. recorder is nil when the journal is disabled.
func NewLookupController(recorder interfaces.LookupRecorder) *LookupController {
	return &LookupController{
		recorder: recorder,
	}
}

// HandleGetLookups returns the most recent journaled lookups
func (lc *LookupController) HandleGetLookups(c *gin.Context) {
	if lc.recorder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lookup journal is disabled"})
		return
	}

	limit := defaultLookupLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, "Invalid request", interfaces.NewValidationError("limit", raw, "must be a positive integer"))
			return
		}
		limit = parsed
	}

	lookups, err := lc.recorder.GetLookups(normalizeSymbol(c.Query("ticker")), limit)
	if err != nil {
		respondError(c, "Failed to read lookups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lookups": lookups,
		"count":   len(lookups),
	})
}
