package models

import (
	"time"

	"gorm.io/gorm"
)

// DBLookup represents one journaled dashboard render
type DBLookup struct {
	gorm.Model
	RequestID        string `gorm:"uniqueIndex"`
	Ticker           string `gorm:"index"`
	ExpirationDate   *time.Time
	PlotParameter    string
	Period           string
	Page             string
	SelectedContract string
	ContractCount    int
	CurrentPrice     float64
	Errors           map[string]string `gorm:"serializer:json"` // keyed by dashboard section
	DurationMs       int64
}

// TableName overrides for cleaner table names
func (DBLookup) TableName() string {
	return "lookups"
}
