package services

import (
	"testing"
	"time"

	"option-explorer/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOCCSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		root   string
		typ    interfaces.OptionType
		strike float64
		date   time.Time
	}{
		{"AAPL240119C00190000", "AAPL", interfaces.OptionTypeCall, 190, time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC)},
		{"O:SPY241220P00450500", "SPY", interfaces.OptionTypePut, 450.5, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)},
		{"BRKB250321C00001000", "BRKB", interfaces.OptionTypeCall, 1, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			parsed, err := ParseOCCSymbol(tt.symbol)
			require.NoError(t, err)

			assert.Equal(t, tt.root, parsed.Root)
			assert.Equal(t, tt.typ, parsed.Type)
			assert.InDelta(t, tt.strike, parsed.Strike, 1e-9)
			assert.True(t, tt.date.Equal(parsed.Expiration))
			assert.True(t, IsOptionSymbol(tt.symbol))
		})
	}
}

func TestOCCSymbolRoundTrip(t *testing.T) {
	for _, symbol := range []string{"AAPL240119C00190000", "SPY241220P00450500", "TSLA260116C01250000"} {
		parsed, err := ParseOCCSymbol(symbol)
		require.NoError(t, err)
		assert.Equal(t, symbol, parsed.String())
	}
}

func TestParseOCCSymbolRejectsMalformed(t *testing.T) {
	for _, symbol := range []string{
		"",
		"AAPL",
		"240119C00190000",     // no root
		"AAPL241319C00190000", // month 13
		"AAPL240119X00190000", // bad type
		"AAPL240119C0019000A", // bad strike
	} {
		_, err := ParseOCCSymbol(symbol)
		assert.Error(t, err, symbol)
		assert.False(t, IsOptionSymbol(symbol), symbol)
	}
}

func TestPolygonTicker(t *testing.T) {
	assert.Equal(t, "AAPL", polygonTicker("AAPL"))
	assert.Equal(t, "O:AAPL240119C00190000", polygonTicker("AAPL240119C00190000"))
	assert.Equal(t, "O:AAPL240119C00190000", polygonTicker("O:AAPL240119C00190000"))
}
