package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is recorded when an import row leaves payment_method blank.
const DefaultPaymentMethod = "cash"

// FuelRecord is one persisted fuel purchase.
// VehiclePlate is denormalized from the vehicle at insert time so exports and
// listings do not need a join to show it.
type FuelRecord struct {
	ID            uuid.UUID
	VehicleID     uuid.UUID
	VehiclePlate  string
	FuelDate      time.Time
	FuelAmount    decimal.Decimal // liters
	UnitPrice     decimal.Decimal // currency per liter
	FuelCost      decimal.Decimal
	Mileage       *int64 // nil when not reported
	FuelStation   string
	Attendant     string
	PaymentMethod string
	ReceiptNumber string
	Notes         string
	BatchID       *uuid.UUID // import batch that created the record, if any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FuelFilter narrows fuel record listings and summaries.
// Zero values mean "no filter". Date bounds are inclusive.
type FuelFilter struct {
	VehiclePlate string
	StartDate    *time.Time
	EndDate      *time.Time
}

// RecordError attributes a batch rejection to one record by its position in
// the submitted batch (0-based).
type RecordError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BatchResult is the outcome of a batch insert.
// Replayed is true when the batch key had already been processed and the
// stored outcome was returned without inserting anything.
type BatchResult struct {
	BatchID      uuid.UUID
	SuccessCount int
	Errors       []RecordError
	Replayed     bool
}

// ErrorCount returns the number of rejected records.
func (b BatchResult) ErrorCount() int {
	return len(b.Errors)
}

// FuelRecordInput is one record of an import batch as received, before
// validation. Numbers, the date and mileage stay as text so that a malformed
// value is reported against its index instead of failing the whole batch.
type FuelRecordInput struct {
	FuelDate      string
	VehiclePlate  string
	FuelAmount    string
	UnitPrice     string
	FuelCost      string // blank means amount × price
	Mileage       string // blank means not reported
	FuelStation   string
	Attendant     string
	PaymentMethod string
	ReceiptNumber string
	Notes         string
}
