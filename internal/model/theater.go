package model

import "time"

// Theater represents a cinema venue.  A theater contains one or more
// halls and its name is unique across the system.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – unique theater name.
//	City      – optional city.
//	Address   – optional street address.
//	CreatedAt – creation timestamp.
type Theater struct {
	ID        uint64    `json:"id"`                // theaters.id
	Name      string    `json:"name"`              // theaters.name
	City      *string   `json:"city,omitempty"`    // theaters.city (nullable)
	Address   *string   `json:"address,omitempty"` // theaters.address (nullable)
	CreatedAt time.Time `json:"created_at"`        // theaters.created_at
}
