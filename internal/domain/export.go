package domain

// ExportRow is a single row in the fuel record export.
// Every field is already formatted as text so CSV and spreadsheet writers can
// emit it unchanged. Columns appear in ExportColumns order.
type ExportRow struct {
	ID            string
	VehiclePlate  string
	FuelDate      string // "2006-01-02"
	FuelAmount    string
	UnitPrice     string
	FuelCost      string
	Mileage       string // empty when not reported
	FuelStation   string
	Attendant     string
	PaymentMethod string
	ReceiptNumber string
	Notes         string
	CreatedAt     string // RFC 3339, UTC
}

// ExportColumns is the header row of every export format.
var ExportColumns = []string{
	"id", "vehicle_plate", "fuel_date", "fuel_amount", "unit_price", "fuel_cost",
	"mileage", "fuel_station", "attendant", "payment_method", "receipt_number",
	"notes", "created_at",
}

// Cells returns the row's values in ExportColumns order.
func (r ExportRow) Cells() []string {
	return []string{
		r.ID, r.VehiclePlate, r.FuelDate, r.FuelAmount, r.UnitPrice, r.FuelCost,
		r.Mileage, r.FuelStation, r.Attendant, r.PaymentMethod, r.ReceiptNumber,
		r.Notes, r.CreatedAt,
	}
}
