package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/fleetlog/internal/domain"
	"github.com/pkordes/fleetlog/internal/fuelimport"
)

// looseString accepts a JSON string, number, or null and keeps its text.
// Batch records are validated per index by the service, so a number sent as
// a string, or a garbled value, must not fail decoding of the whole body.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
	default:
		*l = looseString(b)
	}
	return nil
}

// batchRequest is the body of POST /api/fuel/records/batch.
type batchRequest struct {
	Records []batchRecord `json:"records"`
}

type batchRecord struct {
	FuelDate      looseString `json:"fuel_date"`
	VehiclePlate  looseString `json:"vehicle_plate"`
	FuelAmount    looseString `json:"fuel_amount"`
	UnitPrice     looseString `json:"unit_price"`
	FuelCost      looseString `json:"fuel_cost"`
	Mileage       looseString `json:"mileage"`
	FuelStation   looseString `json:"fuel_station"`
	Attendant     looseString `json:"attendant"`
	PaymentMethod looseString `json:"payment_method"`
	ReceiptNumber looseString `json:"receipt_number"`
	Notes         looseString `json:"notes"`
}

func (b batchRecord) input() domain.FuelRecordInput {
	return domain.FuelRecordInput{
		FuelDate:      string(b.FuelDate),
		VehiclePlate:  string(b.VehiclePlate),
		FuelAmount:    string(b.FuelAmount),
		UnitPrice:     string(b.UnitPrice),
		FuelCost:      string(b.FuelCost),
		Mileage:       string(b.Mileage),
		FuelStation:   string(b.FuelStation),
		Attendant:     string(b.Attendant),
		PaymentMethod: string(b.PaymentMethod),
		ReceiptNumber: string(b.ReceiptNumber),
		Notes:         string(b.Notes),
	}
}

// BatchResponse is the body of a successful batch insert.
type BatchResponse struct {
	SuccessCount int                  `json:"success_count"`
	ErrorCount   int                  `json:"error_count"`
	Errors       []domain.RecordError `json:"errors"`
	Replayed     bool                 `json:"replayed"`
}

// FuelRecordResponse is the JSON form of a stored fuel record.
type FuelRecordResponse struct {
	ID            uuid.UUID          `json:"id"`
	VehicleID     uuid.UUID          `json:"vehicle_id"`
	VehiclePlate  string             `json:"vehicle_plate"`
	FuelDate      openapi_types.Date `json:"fuel_date"`
	FuelAmount    json.Number        `json:"fuel_amount"`
	UnitPrice     json.Number        `json:"unit_price"`
	FuelCost      json.Number        `json:"fuel_cost"`
	Mileage       *int64             `json:"mileage"`
	FuelStation   string             `json:"fuel_station"`
	Attendant     string             `json:"attendant"`
	PaymentMethod string             `json:"payment_method"`
	ReceiptNumber string             `json:"receipt_number"`
	Notes         string             `json:"notes"`
	BatchID       *uuid.UUID         `json:"batch_id"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// FuelRecordPage is the body of GET /api/fuel/records.
type FuelRecordPage struct {
	Data       []FuelRecordResponse `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// FuelSummaryResponse is the body of GET /api/fuel/summary.
type FuelSummaryResponse struct {
	RecordCount int64                  `json:"record_count"`
	TotalLiters json.Number            `json:"total_liters"`
	TotalCost   json.Number            `json:"total_cost"`
	TopVehicles []VehicleTotalResponse `json:"top_vehicles"`
}

// VehicleTotalResponse is one vehicle's row in FuelSummaryResponse.
type VehicleTotalResponse struct {
	VehiclePlate string      `json:"vehicle_plate"`
	RecordCount  int64       `json:"record_count"`
	Liters       json.Number `json:"liters"`
	Cost         json.Number `json:"cost"`
}

// CreateFuelBatch handles POST /api/fuel/records/batch.
// An optional Idempotency-Key header (a UUID) makes retries safe.
func (s *Server) CreateFuelBatch(w http.ResponseWriter, r *http.Request) {
	key := uuid.Nil
	if h := r.Header.Get(fuelimport.IdempotencyHeader); h != "" {
		k, err := uuid.Parse(h)
		if err != nil {
			requestError(w, fuelimport.IdempotencyHeader+" must be a UUID")
			return
		}
		key = k
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bodyError(w, err, "request body must be a JSON object with a records array")
		return
	}

	inputs := make([]domain.FuelRecordInput, len(req.Records))
	for i, rec := range req.Records {
		inputs[i] = rec.input()
	}

	result, err := s.fuel.CreateBatch(r.Context(), key, inputs)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []domain.RecordError{}
	}
	writeJSON(w, http.StatusOK, BatchResponse{
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount(),
		Errors:       errs,
		Replayed:     result.Replayed,
	})
}

// ListFuelRecords handles GET /api/fuel/records.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) and the
// filters vehicle_plate, start_date and end_date.
func (s *Server) ListFuelRecords(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	page, ok := parsePagination(w, r)
	if !ok {
		return
	}

	records, total, err := s.fuel.List(r.Context(), filter, page)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}

	data := make([]FuelRecordResponse, len(records))
	for i, rec := range records {
		data[i] = fuelRecordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, FuelRecordPage{
		Data:       data,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

// GetFuelRecord handles GET /api/fuel/records/{id}.
func (s *Server) GetFuelRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := s.fuel.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "fuel record not found")
		return
	}
	writeJSON(w, http.StatusOK, fuelRecordToResponse(rec))
}

// DeleteFuelRecord handles DELETE /api/fuel/records/{id}.
func (s *Server) DeleteFuelRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.fuel.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "fuel record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFuelSummary handles GET /api/fuel/summary.
func (s *Server) GetFuelSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	summary, err := s.fuel.Summary(r.Context(), filter)
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}

	top := make([]VehicleTotalResponse, len(summary.TopVehicles))
	for i, v := range summary.TopVehicles {
		top[i] = VehicleTotalResponse{
			VehiclePlate: v.VehiclePlate,
			RecordCount:  v.RecordCount,
			Liters:       number(v.Liters),
			Cost:         number(v.Cost),
		}
	}
	writeJSON(w, http.StatusOK, FuelSummaryResponse{
		RecordCount: summary.RecordCount,
		TotalLiters: number(summary.TotalLiters),
		TotalCost:   number(summary.TotalCost),
		TopVehicles: top,
	})
}

// parseFilter reads vehicle_plate, start_date and end_date from the query.
// On failure it writes a 422 and returns false.
func parseFilter(w http.ResponseWriter, r *http.Request) (domain.FuelFilter, bool) {
	q := r.URL.Query()
	filter := domain.FuelFilter{VehiclePlate: q.Get("vehicle_plate")}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			requestError(w, p.name+" must be a date in YYYY-MM-DD form")
			return domain.FuelFilter{}, false
		}
		*p.dst = &d
	}
	return filter, true
}

// parsePagination reads page and limit from the query.
func parsePagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"page", &page},
		{"limit", &limit},
	} {
		v := r.URL.Query().Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			requestError(w, p.name+" must be an integer")
			return domain.PaginationParams{}, false
		}
		*p.dst = &n
	}
	return domain.NewPaginationParams(page, limit), true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		requestError(w, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func fuelRecordToResponse(rec domain.FuelRecord) FuelRecordResponse {
	return FuelRecordResponse{
		ID:            rec.ID,
		VehicleID:     rec.VehicleID,
		VehiclePlate:  rec.VehiclePlate,
		FuelDate:      openapi_types.Date{Time: rec.FuelDate},
		FuelAmount:    number(rec.FuelAmount),
		UnitPrice:     number(rec.UnitPrice),
		FuelCost:      number(rec.FuelCost),
		Mileage:       rec.Mileage,
		FuelStation:   rec.FuelStation,
		Attendant:     rec.Attendant,
		PaymentMethod: rec.PaymentMethod,
		ReceiptNumber: rec.ReceiptNumber,
		Notes:         rec.Notes,
		BatchID:       rec.BatchID,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// number renders a decimal as an unquoted JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
