package fuelimport_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetlog/internal/fuelimport"
)

const minimalHeader = "fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station"

func csvText(lines ...string) string {
	return strings.Join(lines, "\n")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestParse_EndToEnd checks the canonical single-row example: the cost is
// derived from amount × price and the row is valid.
func TestParse_EndToEnd(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		minimalHeader,
		"2025-06-10,ABC-123,45.2,150,StationX",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, fuelimport.StatusValid, c.Status)
	assert.Empty(t, c.Error)
	assert.Equal(t, 2, c.RowNumber)
	assert.Equal(t, "2025-06-10", c.FuelDate)
	assert.Equal(t, "ABC-123", c.VehiclePlate)
	assert.Equal(t, "StationX", c.FuelStation)
	require.True(t, c.FuelCost.Valid)
	assert.True(t, c.FuelCost.Decimal.Equal(dec("6780")), "got %s", c.FuelCost.Decimal)
	assert.True(t, c.CostDerived())
	assert.Nil(t, c.Mileage)
	assert.Equal(t, "cash", c.PaymentMethod, "blank payment method falls back to the default")
}

func TestParse_DerivedCost(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_cost,fuel_station",
		"2025-06-10,ABC-123,10,150,,StationX",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.True(t, res.Candidates[0].FuelCost.Decimal.Equal(dec("1500")))
}

func TestParse_DerivedCostIsRounded(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		minimalHeader,
		"2025-06-10,ABC-123,10.25,151.3,StationX", // 1550.825
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	assert.True(t, res.Candidates[0].FuelCost.Decimal.Equal(dec("1551")))
}

func TestParse_SuppliedCostIsKept(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_cost,fuel_station",
		"2025-06-10,ABC-123,10,150,1499.5,StationX",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	c := res.Candidates[0]
	assert.True(t, c.FuelCost.Decimal.Equal(dec("1499.5")))
	assert.False(t, c.CostDerived())
}

// TestParse_PreservesOrderAndRowNumbers verifies one candidate per data row,
// in file order, with the row number of its source line.
func TestParse_PreservesOrderAndRowNumbers(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		minimalHeader,
		"2025-06-10,A-1,10,150,S1",
		"2025-06-11,A-2,11,150,S2",
		"2025-06-12,A-3,12,150,S3",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)
	for i, c := range res.Candidates {
		assert.Equal(t, i+2, c.RowNumber)
	}
	assert.Equal(t, "A-1", res.Candidates[0].VehiclePlate)
	assert.Equal(t, "A-3", res.Candidates[2].VehiclePlate)
}

// TestParse_BlankLinesKeepRawLineNumbers verifies blank lines are ignored but
// still counted, so row numbers match what an editor shows.
func TestParse_BlankLinesKeepRawLineNumbers(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"",
		minimalHeader,
		"   ",
		"2025-06-10,A-1,10,150,S1",
		"",
		"2025-06-11,A-2,11,150,S2",
		"",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 4, res.Candidates[0].RowNumber)
	assert.Equal(t, 6, res.Candidates[1].RowNumber)
}

func TestParse_CRLF(t *testing.T) {
	res, err := fuelimport.Parse(minimalHeader+"\r\n2025-06-10,A-1,10,150,S1\r\n", fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "S1", res.Candidates[0].FuelStation)
	assert.Equal(t, fuelimport.StatusValid, res.Candidates[0].Status)
}

func TestParse_ColumnOrderIndependent(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_station,unit_price,notes,fuel_amount,vehicle_plate,fuel_date",
		"S1,150,hello,10,A-1,2025-06-10",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	c := res.Candidates[0]
	assert.Equal(t, "S1", c.FuelStation)
	assert.Equal(t, "hello", c.Notes)
	assert.Equal(t, "A-1", c.VehiclePlate)
	assert.Equal(t, fuelimport.StatusValid, c.Status)
}

func TestParse_StripsQuotes(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		minimalHeader,
		`"2025-06-10", "A-1" ,"10","150","Station ""X"""`,
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	c := res.Candidates[0]
	assert.Equal(t, "A-1", c.VehiclePlate)
	assert.Equal(t, "Station X", c.FuelStation)
	assert.Equal(t, fuelimport.StatusValid, c.Status)
}

func TestParse_EmptyFile(t *testing.T) {
	tests := map[string]string{
		"nothing":     "",
		"blank lines": "\n  \n\n",
		"header only": minimalHeader + "\n\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := fuelimport.Parse(text, fuelimport.ParseOptions{})

			var emptyErr *fuelimport.EmptyFileError
			require.ErrorAs(t, err, &emptyErr)
			assert.ErrorIs(t, err, fuelimport.ErrInvalidFile)
			assert.Empty(t, res.Candidates)
		})
	}
}

// TestParse_MissingHeader verifies a missing required column aborts the
// whole parse and names the column.
func TestParse_MissingHeader(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_date,vehicle_plate,fuel_amount,unit_price",
		"2025-06-10,A-1,10,150",
	), fuelimport.ParseOptions{})

	var headerErr *fuelimport.MissingHeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{"fuel_station"}, headerErr.Missing)
	assert.ErrorContains(t, err, "fuel_station")
	assert.ErrorIs(t, err, fuelimport.ErrInvalidFile)
	assert.Empty(t, res.Candidates)
}

func TestParse_MissingHeader_ListsEveryColumn(t *testing.T) {
	_, err := fuelimport.Parse(csvText(
		"date,plate,notes",
		"2025-06-10,A-1,x",
	), fuelimport.ParseOptions{})

	var headerErr *fuelimport.MissingHeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t,
		[]string{"fuel_date", "vehicle_plate", "fuel_amount", "unit_price", "fuel_station"},
		headerErr.Missing,
	)
}

// TestParse_DropsRowsWithWrongCellCount verifies a malformed row produces no
// candidate, is reported in Dropped, and is logged.
func TestParse_DropsRowsWithWrongCellCount(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	res, err := fuelimport.Parse(csvText(
		minimalHeader,
		"2025-06-10,A-1,10,150,S1",
		"2025-06-11,A-2,11,150",
		"2025-06-12,A-3,12,150,S3,extra",
		"2025-06-13,A-4,13,150,S4",
	), fuelimport.ParseOptions{Logger: logger})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "A-1", res.Candidates[0].VehiclePlate)
	assert.Equal(t, "A-4", res.Candidates[1].VehiclePlate)
	assert.Equal(t, []fuelimport.DroppedRow{
		{RowNumber: 3, Cells: 4, Expected: 5},
		{RowNumber: 4, Cells: 6, Expected: 5},
	}, res.Dropped)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.EqualValues(t, 3, entry["row"])
}

// TestParse_MalformedOptionalNumbersDoNotBlock checks that a bad mileage or
// fuel_cost is dropped with a warning while the row stays valid.
func TestParse_MalformedOptionalNumbersDoNotBlock(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		"fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station,mileage,fuel_cost",
		"2025-06-10,A-1,10,150,S1,12.5,",
		"2025-06-11,A-2,10,150,S2,,abc",
		"2025-06-12,A-3,11,150,S3,85234,1650",
	), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)
	assert.Equal(t, fuelimport.Counts{Valid: 3}, res.Counts())

	badMileage := res.Candidates[0]
	assert.Empty(t, badMileage.Error)
	assert.Nil(t, badMileage.Mileage)
	require.Len(t, badMileage.Warnings, 1)
	assert.Contains(t, badMileage.Warnings[0], "mileage")

	badCost := res.Candidates[1]
	assert.Empty(t, badCost.Error)
	assert.True(t, badCost.CostDerived())
	assert.True(t, badCost.FuelCost.Decimal.Equal(dec("1500")))
	require.Len(t, badCost.Warnings, 1)
	assert.Contains(t, badCost.Warnings[0], "fuel_cost")

	good := res.Candidates[2]
	assert.Empty(t, good.Warnings)
	require.NotNil(t, good.Mileage)
	assert.EqualValues(t, 85234, *good.Mileage)
}

func TestParse_AutoDelimiter(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		strings.ReplaceAll(minimalHeader, ",", "\t"),
		"2025-06-10\tA-1\t10\t150\tS1",
	), fuelimport.ParseOptions{AutoDelimiter: true})

	require.NoError(t, err)
	assert.Equal(t, '\t', res.Delimiter)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, fuelimport.StatusValid, res.Candidates[0].Status)
}

func TestParse_ExplicitDelimiter(t *testing.T) {
	res, err := fuelimport.Parse(csvText(
		strings.ReplaceAll(minimalHeader, ",", ";"),
		"2025-06-10;A-1;10;150;S1",
	), fuelimport.ParseOptions{Delimiter: ';'})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
}

func TestParse_Template(t *testing.T) {
	res, err := fuelimport.Parse(string(fuelimport.Template()), fuelimport.ParseOptions{})

	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)
	for _, c := range res.Candidates {
		assert.Equal(t, fuelimport.StatusValid, c.Status, "row %d: %s", c.RowNumber, c.Error)
	}
	assert.Equal(t, fuelimport.Columns(), res.Header)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', fuelimport.DetectDelimiter("a,b,c"))
	assert.Equal(t, '|', fuelimport.DetectDelimiter("a|b|c"))
	assert.Equal(t, ';', fuelimport.DetectDelimiter("a;b;c,d"))
	assert.Equal(t, ',', fuelimport.DetectDelimiter("single"))
}

func TestParseField(t *testing.T) {
	f, err := fuelimport.ParseField(" fuel_station ")
	require.NoError(t, err)
	assert.Equal(t, fuelimport.FieldFuelStation, f)

	_, err = fuelimport.ParseField("odometer")
	assert.True(t, errors.Is(err, fuelimport.ErrUnknownField))
}

func TestDelimiterOption(t *testing.T) {
	tests := []struct {
		name     string
		wantAuto bool
		want     rune
	}{
		{"", false, 0},
		{"auto", true, 0},
		{"AUTO", true, 0},
		{"tab", false, '\t'},
		{";", false, ';'},
		{"pipe", false, '|'},
		{"comma", false, ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := fuelimport.DelimiterOption(fuelimport.ParseOptions{}, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuto, opts.AutoDelimiter)
			assert.Equal(t, tt.want, opts.Delimiter)
		})
	}

	_, err := fuelimport.DelimiterOption(fuelimport.ParseOptions{}, "colon")
	assert.ErrorContains(t, err, "colon")
}

func TestParseResult_Counts(t *testing.T) {
	res, err := fuelimport.Parse(mixedFile, fuelimport.ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, fuelimport.Counts{Valid: 2, Error: 1}, res.Counts())
}
