package model

import "time"

// Agency represents a single service-provider listing in the directory.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Agency struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Category    string    `json:"category,omitempty"`
	TeamSize    int       `json:"team_size"`
	Rate        string    `json:"rate"`
	Rating      float64   `json:"rating"`
	ImageRef    string    `json:"image_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgencyUpdate carries a partial update. Nil fields are left untouched on
// the stored record; only non-nil fields are written.
type AgencyUpdate struct {
	Name        *string
	Description *string
	Location    *string
	Category    *string
	TeamSize    *int
	Rate        *string
	Rating      *float64
	ImageRef    *string
}

// IsEmpty reports whether the update carries no field changes at all.
func (u AgencyUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Location == nil &&
		u.Category == nil && u.TeamSize == nil && u.Rate == nil &&
		u.Rating == nil && u.ImageRef == nil
}
