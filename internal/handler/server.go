// Package handler implements the HTTP handlers for the fleet log API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, fuel.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pkordes/fleetlog/internal/domain"
)

// FuelServicer defines the business operations the fuel handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type FuelServicer interface {
	CreateBatch(ctx context.Context, key uuid.UUID, inputs []domain.FuelRecordInput) (domain.BatchResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.FuelRecord, error)
	List(ctx context.Context, filter domain.FuelFilter, page domain.PaginationParams) ([]domain.FuelRecord, int64, error)
	Summary(ctx context.Context, filter domain.FuelFilter) (domain.FuelSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VehicleServicer defines the vehicle registry operations.
type VehicleServicer interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
}

// Exporter produces the flat fuel record export.
type Exporter interface {
	Export(ctx context.Context, filter domain.FuelFilter) ([]domain.ExportRow, error)
}

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	fuel     FuelServicer
	vehicles VehicleServicer
	export   Exporter
	db       Pinger
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards output.
func NewServer(fuel FuelServicer, vehicles VehicleServicer, export Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{fuel: fuel, vehicles: vehicles, export: export, logger: logger}
}

// WithDatabase makes GET /healthz ping db. It returns s.
func (s *Server) WithDatabase(db Pinger) *Server {
	s.db = db
	return s
}

// NewHealthHandler returns a Server that only answers the health and
// document routes. db may be nil.
func NewHealthHandler(db Pinger) *Server {
	return NewServer(nil, nil, nil, nil).WithDatabase(db)
}

// Routes returns the API router. Trailing slashes are ignored so the
// importer's "/fuel/records/batch/" reaches the same handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Route("/fuel", func(r chi.Router) {
			r.Get("/template", s.GetTemplate)
			r.Post("/import/preview", s.PreviewImport)
			r.Get("/summary", s.GetFuelSummary)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", s.ListFuelRecords)
				r.Post("/batch", s.CreateFuelBatch)
				r.Get("/export", s.ExportFuelRecords)
				r.Get("/{id}", s.GetFuelRecord)
				r.Delete("/{id}", s.DeleteFuelRecord)
			})
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", s.ListVehicles)
			r.Post("/", s.CreateVehicle)
		})
	})
	return r
}
