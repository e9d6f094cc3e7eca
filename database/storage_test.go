package database

import (
	"path/filepath"
	"testing"
	"time"

	"option-explorer/interfaces"
	"option-explorer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	storage, err := NewLocalStorage(filepath.Join(t.TempDir(), "data", "lookups.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSaveAndGetLookups(t *testing.T) {
	storage := newTestStorage(t)
	expiration := time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{
		RequestID:        "req-1",
		Ticker:           "aapl",
		ExpirationDate:   expiration,
		PlotParameter:    "volume",
		Period:           "1mo",
		Page:             "all",
		SelectedContract: "AAPL240119C00190000",
		ContractCount:    42,
		CurrentPrice:     185.5,
		Errors:           map[string]string{"history": "timeout"},
		Duration:         1500 * time.Millisecond,
	}))
	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "req-2", Ticker: "MSFT", Page: "chain"}))
	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "req-3", Ticker: "AAPL", Page: "history"}))

	all, err := storage.GetLookups("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req-3", all[0].RequestID, "newest first")

	aapl, err := storage.GetLookups("aapl", 10)
	require.NoError(t, err)
	require.Len(t, aapl, 2)

	first := aapl[1]
	assert.Equal(t, "req-1", first.RequestID)
	assert.Equal(t, "AAPL", first.Ticker)
	assert.True(t, expiration.Equal(first.ExpirationDate))
	assert.Equal(t, "AAPL240119C00190000", first.SelectedContract)
	assert.Equal(t, 42, first.ContractCount)
	assert.Equal(t, 185.5, first.CurrentPrice)
	assert.Equal(t, map[string]string{"history": "timeout"}, first.Errors)
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.False(t, first.CreatedAt.IsZero())

	assert.True(t, aapl[0].ExpirationDate.IsZero())
	assert.Empty(t, aapl[0].Errors)

	limited, err := storage.GetLookups("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSaveLookupDuplicateRequestID(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "same", Ticker: "AAPL"}))
	assert.Error(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "same", Ticker: "AAPL"}))
}

func TestCleanupOldData(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "old", Ticker: "AAPL"}))
	require.NoError(t, storage.SaveLookup(&interfaces.LookupRecord{RequestID: "new", Ticker: "AAPL"}))
	require.NoError(t, storage.db.Model(&models.DBLookup{}).
		Where("request_id = ?", "old").
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	deleted, err := storage.CleanupOldData(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := storage.GetLookups("", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].RequestID)
}
