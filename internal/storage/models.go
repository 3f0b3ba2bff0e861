package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusComplete marks a snapshot written by a finished bucket.
const StatusComplete = "complete"

// RateSnapshot is one metal rate observed during a watch bucket.
type RateSnapshot struct {
	Bucket         time.Time
	RateID         int64
	Metal          string
	Purity         string
	RatePerGram    decimal.Decimal
	RatePerTenGram decimal.Decimal
	CurrentPrice   decimal.Decimal
	PredictedPrice decimal.Decimal
	ChangePct      *decimal.Decimal
	Status         string
	// Error notes why a derived column is missing.
	Error          *string
	CreatedAt      time.Time
}

// Label is "gold 22K" style display text.
func (s RateSnapshot) Label() string {
	if s.Purity == "" {
		return s.Metal
	}
	return s.Metal + " " + s.Purity
}

// AlertRecord captures an emitted rate alert for de-duplication/auditing.
type AlertRecord struct {
	ID           int64
	Bucket       time.Time
	RateID       int64
	ChangePct    decimal.Decimal
	ThresholdPct decimal.Decimal
	Direction    string
	Channels     []string
	CreatedAt    time.Time
}
