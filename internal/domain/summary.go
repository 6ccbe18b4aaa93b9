package domain

import "github.com/shopspring/decimal"

// FuelSummary aggregates fuel records over an optional date range.
type FuelSummary struct {
	RecordCount int64
	TotalLiters decimal.Decimal
	TotalCost   decimal.Decimal
	// TopVehicles holds at most SummaryTopVehicles entries, largest volume first.
	TopVehicles []VehicleFuelTotal
}

// VehicleFuelTotal is one vehicle's share of a FuelSummary.
type VehicleFuelTotal struct {
	VehiclePlate string
	RecordCount  int64
	Liters       decimal.Decimal
	Cost         decimal.Decimal
}

// SummaryTopVehicles caps the per-vehicle breakdown in a FuelSummary.
const SummaryTopVehicles = 10
