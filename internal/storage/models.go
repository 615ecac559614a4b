package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample represents one persisted poll observation.
type PriceSample struct {
	Bucket    time.Time
	Price     decimal.Decimal
	Change    decimal.Decimal
	TodayHigh *decimal.Decimal
	TodayLow  *decimal.Decimal
	Status    string
	Error     *string
	CreatedAt time.Time
}

// AlertRecord captures a delivered alert for auditing.
type AlertRecord struct {
	ID        int64
	SampleTS  time.Time
	Kind      string
	Magnitude decimal.Decimal
	Message   string
	CreatedAt time.Time
}
