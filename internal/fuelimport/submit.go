package fuelimport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RedirectDelay is how long a caller should keep the success message on screen
// before navigating away from the import page.
const RedirectDelay = 3 * time.Second

// Batch is the request sent to the collection endpoint.
// Key is sent out of band as the Idempotency-Key header; uuid.Nil omits it.
type Batch struct {
	Key     uuid.UUID       `json:"-"`
	Records []RecordPayload `json:"records"`
}

// RecordPayload is one candidate as it goes over the wire. The client-side
// bookkeeping fields (row number, status, error) are not part of it.
type RecordPayload struct {
	FuelDate      string      `json:"fuel_date"`
	VehiclePlate  string      `json:"vehicle_plate"`
	FuelAmount    json.Number `json:"fuel_amount"`
	UnitPrice     json.Number `json:"unit_price"`
	FuelCost      json.Number `json:"fuel_cost"`
	Mileage       *int64      `json:"mileage"`
	FuelStation   string      `json:"fuel_station"`
	Attendant     string      `json:"attendant"`
	PaymentMethod string      `json:"payment_method"`
	ReceiptNumber string      `json:"receipt_number"`
	Notes         string      `json:"notes"`
}

// BatchResponse is the collection endpoint's success body.
type BatchResponse struct {
	SuccessCount int  `json:"success_count"`
	ErrorCount   int  `json:"error_count"`
	Replayed     bool `json:"replayed"`
}

// BatchSender delivers one batch to the collection endpoint.
// Implementations return *SubmitError for a non-2xx answer.
type BatchSender interface {
	SendBatch(ctx context.Context, batch Batch) (BatchResponse, error)
}

// SubmitResult summarises a successful submit.
type SubmitResult struct {
	// Submitted is the number of records sent.
	Submitted int
	// Accepted is the server's success count.
	Accepted int
	// Rejected is the server's error count.
	Rejected int
	// Replayed is true when the server had already processed this batch key.
	Replayed bool
	// RedirectAfter is RedirectDelay, carried so callers need not import it.
	RedirectAfter time.Duration
}

// Message is the operator-facing success line.
func (r SubmitResult) Message() string {
	return fmt.Sprintf("%d fuel records uploaded", r.Accepted)
}

// Submit sends every valid candidate to sender in one call.
//
// Error candidates are never sent. With no valid candidate it returns
// ErrNothingToUpload without calling sender. Submit does not retry and does
// not split the batch.
func Submit(ctx context.Context, candidates []Candidate, key uuid.UUID, sender BatchSender) (SubmitResult, error) {
	batch := Batch{Key: key, Records: Payloads(candidates)}
	if len(batch.Records) == 0 {
		return SubmitResult{}, ErrNothingToUpload
	}

	resp, err := sender.SendBatch(ctx, batch)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("fuelimport.Submit: %w", err)
	}

	return SubmitResult{
		Submitted:     len(batch.Records),
		Accepted:      resp.SuccessCount,
		Rejected:      resp.ErrorCount,
		Replayed:      resp.Replayed,
		RedirectAfter: RedirectDelay,
	}, nil
}

// Payloads returns the wire form of every valid candidate, in order.
func Payloads(candidates []Candidate) []RecordPayload {
	var out []RecordPayload
	for _, c := range candidates {
		switch c.Status {
		case StatusValid:
			out = append(out, toPayload(c))
		case StatusError:
		}
	}
	return out
}

func toPayload(c Candidate) RecordPayload {
	return RecordPayload{
		FuelDate:      c.FuelDate,
		VehiclePlate:  c.VehiclePlate,
		FuelAmount:    json.Number(c.FuelAmount.Decimal.String()),
		UnitPrice:     json.Number(c.UnitPrice.Decimal.String()),
		FuelCost:      json.Number(c.FuelCost.Decimal.String()),
		Mileage:       c.Mileage,
		FuelStation:   c.FuelStation,
		Attendant:     c.Attendant,
		PaymentMethod: c.PaymentMethod,
		ReceiptNumber: c.ReceiptNumber,
		Notes:         c.Notes,
	}
}
