package fuelimport

import (
	"time"

	"github.com/pkordes/fleetlog/internal/domain"
)

// Record converts a valid candidate to the record stored by the backend.
// VehicleID is left for the caller to resolve from VehiclePlate.
// ok is false for an error candidate.
func (c Candidate) Record() (rec domain.FuelRecord, ok bool) {
	if !c.Valid() {
		return domain.FuelRecord{}, false
	}
	date, err := time.Parse(dateLayout, c.FuelDate)
	if err != nil {
		return domain.FuelRecord{}, false
	}
	rec = domain.FuelRecord{
		VehiclePlate:  c.VehiclePlate,
		FuelDate:      date,
		FuelAmount:    c.FuelAmount.Decimal,
		UnitPrice:     c.UnitPrice.Decimal,
		FuelCost:      c.FuelCost.Decimal,
		FuelStation:   c.FuelStation,
		Attendant:     c.Attendant,
		PaymentMethod: c.PaymentMethod,
		ReceiptNumber: c.ReceiptNumber,
		Notes:         c.Notes,
	}
	if c.Mileage != nil {
		m := *c.Mileage
		rec.Mileage = &m
	}
	return rec, true
}
