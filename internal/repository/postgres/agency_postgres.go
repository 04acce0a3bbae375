package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"agencydir/internal/model"
	"agencydir/internal/repository"
)

// AgencyPostgres is a PostgreSQL implementation of repository.AgencyRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AgencyPostgres struct {
	db *sql.DB
}

// NewAgencyPostgres creates a new AgencyPostgres repository.
func NewAgencyPostgres(db *sql.DB) *AgencyPostgres {
	return &AgencyPostgres{db: db}
}

var _ repository.AgencyRepository = (*AgencyPostgres)(nil)

const agencyColumns = "id, name, description, location, category, team_size, rate, rating, image_ref, created_at, updated_at"

func scanAgency(row interface{ Scan(...any) error }) (*model.Agency, error) {
	var a model.Agency
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Location,
		&a.Category,
		&a.TeamSize,
		&a.Rate,
		&a.Rating,
		&a.ImageRef,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new listing row and returns the stored record.
func (r *AgencyPostgres) Create(ctx context.Context, agency *model.Agency) (*model.Agency, error) {
	const q = `
		INSERT INTO agencies (id, name, description, location, category, team_size, rate, rating, image_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + agencyColumns
	row := r.db.QueryRowContext(ctx, q,
		agency.ID,
		agency.Name,
		agency.Description,
		agency.Location,
		agency.Category,
		agency.TeamSize,
		agency.Rate,
		agency.Rating,
		agency.ImageRef,
		agency.CreatedAt,
		agency.UpdatedAt,
	)
	return scanAgency(row)
}

// FindByID fetches a single listing by its ID.
func (r *AgencyPostgres) FindByID(ctx context.Context, id string) (*model.Agency, error) {
	const q = `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`
	return scanAgency(r.db.QueryRowContext(ctx, q, id))
}

// FindAll returns every listing in creation order.
func (r *AgencyPostgres) FindAll(ctx context.Context) ([]model.Agency, error) {
	const q = `SELECT ` + agencyColumns + ` FROM agencies ORDER BY created_at ASC, id ASC`
	return r.queryAgencies(ctx, q)
}

// FindFiltered matches name and location substrings case-insensitively.
// Empty filter strings match everything, so the query stays a single
// statement for all filter combinations.
func (r *AgencyPostgres) FindFiltered(ctx context.Context, name, location string) ([]model.Agency, error) {
	const q = `
		SELECT ` + agencyColumns + `
		FROM agencies
		WHERE name ILIKE '%' || $1 || '%' AND location ILIKE '%' || $2 || '%'
		ORDER BY created_at ASC, id ASC
	`
	return r.queryAgencies(ctx, q, name, location)
}

// FindFeatured returns the top listings by rating; ties resolve in creation
// order so the result is deterministic for a fixed data set.
func (r *AgencyPostgres) FindFeatured(ctx context.Context, minRating float64, limit int) ([]model.Agency, error) {
	const q = `
		SELECT ` + agencyColumns + `
		FROM agencies
		WHERE rating >= $1
		ORDER BY rating DESC, created_at ASC, id ASC
		LIMIT $2
	`
	return r.queryAgencies(ctx, q, minRating, limit)
}

// Update applies the non-nil fields of upd in a single UPDATE statement, so
// concurrent updates to the same row serialize without torn writes.
func (r *AgencyPostgres) Update(ctx context.Context, id string, upd model.AgencyUpdate) (*model.Agency, error) {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.TeamSize != nil {
		set("team_size", *upd.TeamSize)
	}
	if upd.Rate != nil {
		set("rate", *upd.Rate)
	}
	if upd.Rating != nil {
		set("rating", *upd.Rating)
	}
	if upd.ImageRef != nil {
		set("image_ref", *upd.ImageRef)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	q := fmt.Sprintf(
		`UPDATE agencies SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), agencyColumns,
	)
	return scanAgency(r.db.QueryRowContext(ctx, q, args...))
}

// Delete removes a listing by ID and reports sql.ErrNoRows when the row did
// not exist.
func (r *AgencyPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM agencies WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgencyPostgres) queryAgencies(ctx context.Context, q string, args ...any) ([]model.Agency, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Agency, 0)
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
