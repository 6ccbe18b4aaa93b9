// Package domain contains the core data types for the fleet log application.
// It is imported by every other internal package (repo, service, handler,
// fuelimport) and holds no I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a fleet vehicle identified by its licence plate.
// Plate is the key fuel records are resolved against; it is stored exactly as
// registered and compared after whitespace trimming.
type Vehicle struct {
	ID        uuid.UUID
	Plate     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
