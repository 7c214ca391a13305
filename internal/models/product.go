package models

import "time"

// Product is a catalog entry mapping a product code to a display name and
// a default target ROAS.
type Product struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Target    float64   `json:"target"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
