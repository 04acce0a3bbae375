package repository

import (
	"context"

	"agencydir/internal/model"
)

// AgencyRepository defines data access for agency listings using SQL
// queries only. No business logic here, strictly persistence operations.
//
// Absent rows are reported as sql.ErrNoRows by FindByID, Update, and
// Delete; the service layer maps them to its own not-found error.
type AgencyRepository interface {
	// Create inserts a new listing row. The caller provides ID and
	// timestamps; ids are assigned exactly once and never reused.
	Create(ctx context.Context, agency *model.Agency) (*model.Agency, error)

	// FindByID returns a listing by its ID.
	FindByID(ctx context.Context, id string) (*model.Agency, error)

	// FindAll returns every listing in creation order.
	FindAll(ctx context.Context) ([]model.Agency, error)

	// FindFiltered returns listings whose name and location contain the
	// given substrings, case-insensitively. An empty filter string matches
	// everything; both filters must hold when both are given.
	FindFiltered(ctx context.Context, name, location string) ([]model.Agency, error)

	// FindFeatured returns at most limit listings rated at least minRating,
	// ordered by rating descending with creation order as the tiebreak.
	FindFeatured(ctx context.Context, minRating float64, limit int) ([]model.Agency, error)

	// Update applies only the non-nil fields of upd in a single UPDATE
	// statement and returns the stored row.
	Update(ctx context.Context, id string, upd model.AgencyUpdate) (*model.Agency, error)

	// Delete removes a listing by ID.
	Delete(ctx context.Context, id string) error
}
