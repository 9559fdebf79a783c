// Package domain defines core domain types, constants, and validation for
// the Haven search pipeline. It acts as the validation gate at pipeline
// entry points.
package domain

import "github.com/HavenAI/haven-mvp/pkg/geo"

// Listing is one property record in the read-only catalog. Loaded once at
// startup and never mutated while serving.
type Listing struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Type        string          `json:"type"`
	Style       string          `json:"style"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	Price       float64         `json:"price"`
	View        string          `json:"view"`
	Furnishing  string          `json:"furnishing"`
	Coord       *geo.Coordinate `json:"coord,omitempty"`
}
