// Package fuelimport turns an uploaded fuel-purchase CSV into validated
// candidates, lets an operator correct rows in place, and submits the valid
// subset to the fuel records collection endpoint as one batch.
//
// The flow is Parse → Validate (per row) → Session.UpdateField (per edit) →
// Submit. Row-level problems are data on the Candidate, never Go errors;
// only whole-file and transport failures are returned as errors.
package fuelimport

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pkordes/fleetlog/internal/domain"
)

// Status is the validation state of a Candidate.
type Status int

const (
	// StatusValid marks a candidate that will be included in a batch submit.
	StatusValid Status = iota + 1
	// StatusError marks a candidate with a row-local problem; Candidate.Error says what.
	StatusError
)

// String returns the label shown to operators and used in JSON previews.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets Status appear as its label in JSON.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusValid, StatusError:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("fuelimport: invalid status %d", int(s))
	}
}

// UnmarshalText accepts the labels written by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "valid":
		*s = StatusValid
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("fuelimport: unknown status %q", b)
	}
	return nil
}

// Field names one editable column of a fuel record.
type Field int

const (
	FieldFuelDate Field = iota + 1
	FieldVehiclePlate
	FieldFuelAmount
	FieldUnitPrice
	FieldFuelCost
	FieldMileage
	FieldFuelStation
	FieldAttendant
	FieldPaymentMethod
	FieldReceiptNumber
	FieldNotes
)

// columns lists every field in template column order.
var columns = []Field{
	FieldFuelDate,
	FieldVehiclePlate,
	FieldFuelAmount,
	FieldUnitPrice,
	FieldFuelCost,
	FieldMileage,
	FieldFuelStation,
	FieldAttendant,
	FieldPaymentMethod,
	FieldReceiptNumber,
	FieldNotes,
}

// requiredColumns must all be present in the header row.
var requiredColumns = []Field{
	FieldFuelDate,
	FieldVehiclePlate,
	FieldFuelAmount,
	FieldUnitPrice,
	FieldFuelStation,
}

// String returns the CSV column name of the field.
func (f Field) String() string {
	switch f {
	case FieldFuelDate:
		return "fuel_date"
	case FieldVehiclePlate:
		return "vehicle_plate"
	case FieldFuelAmount:
		return "fuel_amount"
	case FieldUnitPrice:
		return "unit_price"
	case FieldFuelCost:
		return "fuel_cost"
	case FieldMileage:
		return "mileage"
	case FieldFuelStation:
		return "fuel_station"
	case FieldAttendant:
		return "attendant"
	case FieldPaymentMethod:
		return "payment_method"
	case FieldReceiptNumber:
		return "receipt_number"
	case FieldNotes:
		return "notes"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Columns returns the column names of the import format in template order.
func Columns() []string {
	out := make([]string, len(columns))
	for i, f := range columns {
		out[i] = f.String()
	}
	return out
}

// ParseField maps a column name to its Field.
// Returns ErrUnknownField for names outside the import format.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for _, f := range columns {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Candidate is one parsed data row awaiting batch submission.
//
// FuelAmount, UnitPrice and FuelCost are null when the source text was blank
// or not a number. FuelCost is derived from amount × price when the source
// left it blank. Error is non-empty exactly when Status is StatusError.
type Candidate struct {
	RowNumber     int                 `json:"row_number"`
	FuelDate      string              `json:"fuel_date"`
	VehiclePlate  string              `json:"vehicle_plate"`
	FuelAmount    decimal.NullDecimal `json:"fuel_amount"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	FuelCost      decimal.NullDecimal `json:"fuel_cost"`
	Mileage       *int64              `json:"mileage"`
	FuelStation   string              `json:"fuel_station"`
	Attendant     string              `json:"attendant"`
	PaymentMethod string              `json:"payment_method"`
	ReceiptNumber string              `json:"receipt_number"`
	Notes         string              `json:"notes"`
	Status        Status              `json:"status"`
	Error         string              `json:"error,omitempty"`
	// Warnings lists optional values that could not be read and were
	// dropped. They never affect Status.
	Warnings      []string            `json:"warnings,omitempty"`

	costDerived bool
	ignored     []fieldWarning
}

// fieldWarning records an optional typed column whose text could not be
// converted. It is cleared when the field is next set.
type fieldWarning struct {
	field Field
	msg   string
}

// Valid reports whether the candidate will be included in a batch submit.
func (c Candidate) Valid() bool {
	return c.Status == StatusValid
}

// CostDerived reports whether FuelCost was computed rather than read from the file.
func (c Candidate) CostDerived() bool {
	return c.costDerived
}

// NewCandidate builds and validates a candidate from a column name → cell map.
// Missing columns read as blank.
// Columns missing from values are treated as blank.
func NewCandidate(rowNumber int, values map[string]string) Candidate {
	c := Candidate{RowNumber: rowNumber}
	for _, f := range columns {
		c = setField(c, f, values[f.String()])
	}
	return Validate(c)
}

// setField applies raw text to one field, converting it to the field's type.
// It never fails: unparseable required numbers become null and are caught by
// Validate. An unparseable mileage becomes nil and an unparseable fuel_cost
// is derived as if blank; both leave a warning.
// The returned candidate shares no mutable state with c.
func setField(c Candidate, f Field, raw string) Candidate {
	raw = strings.TrimSpace(raw)
	c.ignored = slices.DeleteFunc(slices.Clone(c.ignored), func(e fieldWarning) bool {
		return e.field == f
	})

	switch f {
	case FieldFuelDate:
		c.FuelDate = raw
	case FieldVehiclePlate:
		c.VehiclePlate = raw
	case FieldFuelAmount:
		c.FuelAmount = parseDecimal(raw)
		c = rederiveCost(c)
	case FieldUnitPrice:
		c.UnitPrice = parseDecimal(raw)
		c = rederiveCost(c)
	case FieldFuelCost:
		d, err := decimal.NewFromString(raw)
		if raw != "" && err != nil {
			c.ignored = append(c.ignored, fieldWarning{f, fmt.Sprintf("fuel_cost %q is not a number; derived from fuel_amount × unit_price", raw)})
		}
		if raw == "" || err != nil {
			c.costDerived = true
			c = rederiveCost(c)
			break
		}
		c.costDerived = false
		c.FuelCost = decimal.NewNullDecimal(d)
	case FieldMileage:
		c.Mileage = nil
		if raw == "" {
			break
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			c.ignored = append(c.ignored, fieldWarning{f, fmt.Sprintf("mileage %q is not a non-negative integer; left empty", raw)})
			break
		}
		c.Mileage = &n
	case FieldFuelStation:
		c.FuelStation = raw
	case FieldAttendant:
		c.Attendant = raw
	case FieldPaymentMethod:
		if raw == "" {
			raw = domain.DefaultPaymentMethod
		}
		c.PaymentMethod = raw
	case FieldReceiptNumber:
		c.ReceiptNumber = raw
	case FieldNotes:
		c.Notes = raw
	}
	return c
}

// rederiveCost recomputes FuelCost when it was not supplied by the user.
// The derived cost is rounded to whole currency units.
func rederiveCost(c Candidate) Candidate {
	if !c.costDerived {
		return c
	}
	if !c.FuelAmount.Valid || !c.UnitPrice.Valid {
		c.FuelCost = decimal.NullDecimal{}
		return c
	}
	c.FuelCost = decimal.NewNullDecimal(c.FuelAmount.Decimal.Mul(c.UnitPrice.Decimal).Round(0))
	return c
}

// parseDecimal returns a null decimal for blank or non-numeric text.
func parseDecimal(raw string) decimal.NullDecimal {
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
