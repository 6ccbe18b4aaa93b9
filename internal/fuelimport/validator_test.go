package fuelimport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetlog/internal/fuelimport"
)

// parseOne parses a single data row under the minimal header.
func parseOne(t *testing.T, row string) fuelimport.Candidate {
	t.Helper()
	res, err := fuelimport.Parse(csvText(minimalHeader, row), fuelimport.ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	return res.Candidates[0]
}

func TestValidate_Predicates(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string // expected error message; "" means valid
	}{
		{"valid", "2025-06-10,A-1,10,150,S1", ""},
		{"amount zero", "2025-06-10,A-1,0,150,S1", fuelimport.MsgInvalidAmount},
		{"amount smallest positive", "2025-06-10,A-1,0.01,150,S1", ""},
		{"amount negative", "2025-06-10,A-1,-5,150,S1", fuelimport.MsgInvalidAmount},
		{"amount not a number", "2025-06-10,A-1,ten,150,S1", fuelimport.MsgInvalidAmount},
		{"amount blank", "2025-06-10,A-1,,150,S1", fuelimport.MsgInvalidAmount},
		{"price zero", "2025-06-10,A-1,10,0,S1", fuelimport.MsgInvalidUnitPrice},
		{"price smallest positive", "2025-06-10,A-1,10,0.01,S1", ""},
		{"price not a number", "2025-06-10,A-1,10,abc,S1", fuelimport.MsgInvalidUnitPrice},
		{"plate blank", "2025-06-10,,10,150,S1", fuelimport.MsgMissingPlate},
		{"plate whitespace", "2025-06-10,   ,10,150,S1", fuelimport.MsgMissingPlate},
		{"station blank", "2025-06-10,A-1,10,150,", fuelimport.MsgMissingStation},
		{"date blank", ",A-1,10,150,S1", fuelimport.MsgInvalidDate},
		{"date wrong form", "2025/06/10,A-1,10,150,S1", fuelimport.MsgInvalidDate},
		{"date not padded", "2025-6-10,A-1,10,150,S1", fuelimport.MsgInvalidDate},
		{"date not a real day", "2025-02-30,A-1,10,150,S1", fuelimport.MsgInvalidDate},
		{"leap day", "2024-02-29,A-1,10,150,S1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseOne(t, tt.row)

			if tt.want == "" {
				assert.Equal(t, fuelimport.StatusValid, c.Status, c.Error)
				assert.Empty(t, c.Error)
				return
			}
			assert.Equal(t, fuelimport.StatusError, c.Status)
			assert.Equal(t, tt.want, c.Error)
		})
	}
}

// TestValidate_PriorityOrder verifies only the first failing check is
// reported when several fields are bad.
func TestValidate_PriorityOrder(t *testing.T) {
	tests := []struct {
		row  string
		want string
	}{
		{"bad,,0,0,", fuelimport.MsgInvalidDate},
		{"2025-06-10,,0,0,", fuelimport.MsgInvalidAmount},
		{"2025-06-10,,1,0,", fuelimport.MsgInvalidUnitPrice},
		{"2025-06-10,,1,1,", fuelimport.MsgMissingPlate},
		{"2025-06-10,A,1,1,", fuelimport.MsgMissingStation},
	}
	for _, tt := range tests {
		t.Run(tt.row, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOne(t, tt.row).Error)
		})
	}
}

func TestValidate_ClearsPreviousError(t *testing.T) {
	c := parseOne(t, "2025-06-10,A-1,10,150,S1")
	c.Status = fuelimport.StatusError
	c.Error = "stale"

	got := fuelimport.Validate(c)

	assert.Equal(t, fuelimport.StatusValid, got.Status)
	assert.Empty(t, got.Error)
}

func TestValidate_OptionalTextNeverBlocks(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station,attendant,payment_method,receipt_number,notes",
		"2025-06-10,A-1,10,150,S1,,,,",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	assert.Equal(t, fuelimport.StatusValid, res.Candidates[0].Status)
}

func TestValidDate(t *testing.T) {
	assert.True(t, fuelimport.ValidDate("2025-06-10"))
	assert.False(t, fuelimport.ValidDate("2025-13-01"))
	assert.False(t, fuelimport.ValidDate("20250610"))
	assert.False(t, fuelimport.ValidDate(""))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "valid", fuelimport.StatusValid.String())
	assert.Equal(t, "error", fuelimport.StatusError.String())
	assert.Equal(t, "unknown", fuelimport.Status(0).String())
}
