package controllers

import (
	"option-explorer/interfaces"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Defaults fill selection fields a request leaves empty
type Defaults struct {
	Ticker    string
	Parameter interfaces.PlotParameter
	Period    interfaces.HistoricalPeriod
}

func parseExpiration(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	expiration, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, interfaces.NewValidationError("expiration", raw, "expected YYYY-MM-DD")
	}
	return expiration, nil
}

func parseParameter(raw string, fallback interfaces.PlotParameter) (interfaces.PlotParameter, error) {
	if raw == "" {
		return fallback, nil
	}
	parameter := interfaces.PlotParameter(raw)
	if !parameter.Valid() {
		return "", interfaces.NewValidationError("parameter", raw, "must be one of lastPrice, volume, openInterest")
	}
	return parameter, nil
}

func parsePeriod(raw string, fallback interfaces.HistoricalPeriod) (interfaces.HistoricalPeriod, error) {
	if raw == "" {
		return fallback, nil
	}
	period := interfaces.HistoricalPeriod(raw)
	if !period.Valid() {
		return "", interfaces.NewValidationError("period", raw, "must be one of 1mo, 6mo, 1y, 5y")
	}
	return period, nil
}

func normalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// selectionFromQuery builds a validated selection from the :ticker param and the query string
func selectionFromQuery(c *gin.Context, defaults Defaults) (interfaces.UserSelection, error) {
	ticker := normalizeSymbol(c.Param("ticker"))
	if ticker == "" {
		ticker = normalizeSymbol(c.Query("ticker"))
	}
	if ticker == "" {
		ticker = defaults.Ticker
	}

	expiration, err := parseExpiration(c.Query("expiration"))
	if err != nil {
		return interfaces.UserSelection{}, err
	}

	selection := interfaces.UserSelection{
		Ticker:                 ticker,
		ExpirationDate:         expiration,
		PlotParameter:          interfaces.PlotParameter(c.Query("parameter")),
		SelectedContractSymbol: normalizeSymbol(c.Query("contract")),
		HistoricalPeriod:       interfaces.HistoricalPeriod(c.Query("period")),
		Page:                   interfaces.Page(strings.ToLower(c.Query("page"))),
	}.WithDefaults(defaults.Parameter, defaults.Period)

	if err := selection.Validate(); err != nil {
		return interfaces.UserSelection{}, err
	}
	return selection, nil
}
