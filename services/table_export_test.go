package services

import (
	"bytes"
	"strings"
	"testing"

	"option-explorer/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTableCSV(t *testing.T) {
	table := BuildSortedTable("All Contracts", CombineChain(sampleChain()))

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(table, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(ContractColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,AAPL240101C105,Call,105,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "3,AAPL240101C100,Call,100,"), lines[3])
}

func TestFormatRow(t *testing.T) {
	row := interfaces.ContractRow{
		Rank:           2,
		ContractSymbol: "AAPL240119C00190000",
		Type:           "Call",
		Strike:         190,
		LastPrice:      3.456,
		Bid:            3.4,
		Ask:            3.5,
		Volume:         1200,
		OpenInterest:   5400,
	}

	cells := FormatRow(row)

	assert.Len(t, cells, len(ContractColumns))
	assert.Equal(t, []string{"2", "AAPL240119C00190000", "Call", "190.00", "3.46", "3.40", "3.50", "1200", "5400"}, cells)
}
