package fuelimport

import (
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the only accepted fuel_date form.
const dateLayout = "2006-01-02"

// Messages attached to Candidate.Error, one per failed check.
const (
	MsgInvalidDate      = "fuel_date must be a real date in YYYY-MM-DD form"
	MsgInvalidAmount    = "fuel_amount must be a number greater than zero"
	MsgInvalidUnitPrice = "unit_price must be a number greater than zero"
	MsgMissingPlate     = "vehicle_plate is required"
	MsgMissingStation   = "fuel_station is required"
)

// Validate sets Status and Error on one candidate without looking at any other.
//
// Checks run in a fixed order and stop at the first failure:
// fuel_date, fuel_amount, unit_price, vehicle_plate, fuel_station. A candidate
// passing every check is StatusValid with an empty Error. Other fields never
// block; values dropped while reading them are listed in Warnings.
func Validate(c Candidate) Candidate {
	c.Status = StatusValid
	c.Error = ""
	c.Warnings = nil
	for _, w := range c.ignored {
		c.Warnings = append(c.Warnings, w.msg)
	}
	if msg := firstFailure(c); msg != "" {
		c.Status = StatusError
		c.Error = msg
	}
	return c
}

func firstFailure(c Candidate) string {
	switch {
	case !ValidDate(c.FuelDate):
		return MsgInvalidDate
	case !positive(c.FuelAmount):
		return MsgInvalidAmount
	case !positive(c.UnitPrice):
		return MsgInvalidUnitPrice
	case c.VehiclePlate == "":
		return MsgMissingPlate
	case c.FuelStation == "":
		return MsgMissingStation
	}
	return ""
}

// ValidDate reports whether s is a real calendar date written as YYYY-MM-DD.
func ValidDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func positive(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.IsPositive()
}
