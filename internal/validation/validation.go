// Package validation normalizes and validates raw listing field sets before
// they reach the store. It is a pure layer: no I/O, no side effects.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"agencydir/internal/config"
	"agencydir/internal/model"
)

// Error codes carried by FieldError.
const (
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeInvalidRating        = "INVALID_RATING"
	CodeInvalidTeamSize      = "INVALID_TEAM_SIZE"
)

// FieldError is a validation rejection naming the offending field.
type FieldError struct {
	Code  string
	Field string
	Value string
}

func (e *FieldError) Error() string {
	switch e.Code {
	case CodeMissingRequiredField:
		return fmt.Sprintf("%s is required", e.Field)
	default:
		return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
	}
}

// AsFieldError unwraps err into a *FieldError, if it is one.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func missingField(field string) error {
	return &FieldError{Code: CodeMissingRequiredField, Field: field}
}

func invalidRating(value string) error {
	return &FieldError{Code: CodeInvalidRating, Field: "rating", Value: value}
}

func invalidTeamSize(value string) error {
	return &FieldError{Code: CodeInvalidTeamSize, Field: "teamSize", Value: value}
}

// RawAgency is the incoming field set as it arrives off the wire. A nil
// pointer means the field was absent from the request; present-but-empty
// and absent are distinct for partial updates.
type RawAgency struct {
	Name        *string
	Description *string
	Location    *string
	Category    *string
	TeamSize    *string
	Rate        *string
	Rating      *string
}

// CreateAgency is a fully validated and coerced create payload.
type CreateAgency struct {
	Name        string
	Description string
	Location    string
	Category    string
	TeamSize    int
	Rate        string
	Rating      float64
}

// ValidateCreate checks the required field set and coerces numeric fields.
// An absent or empty rating defaults to rules.RatingMin; a rating that is
// present but unparseable or out of bounds is rejected, never clamped.
func ValidateCreate(raw RawAgency, rules config.SchemaConfig) (*CreateAgency, error) {
	name, err := requireField("name", raw.Name)
	if err != nil {
		return nil, err
	}
	location, err := requireField("location", raw.Location)
	if err != nil {
		return nil, err
	}
	rate, err := requireField("rate", raw.Rate)
	if err != nil {
		return nil, err
	}
	if raw.TeamSize == nil || strings.TrimSpace(*raw.TeamSize) == "" {
		return nil, missingField("teamSize")
	}
	teamSize, err := coerceTeamSize(*raw.TeamSize)
	if err != nil {
		return nil, err
	}

	category := ""
	if raw.Category != nil {
		category = strings.TrimSpace(*raw.Category)
	}
	if rules.CategoryRequired && category == "" {
		return nil, missingField("category")
	}

	rating := rules.RatingMin
	if raw.Rating != nil && strings.TrimSpace(*raw.Rating) != "" {
		rating, err = coerceRating(*raw.Rating, rules)
		if err != nil {
			return nil, err
		}
	}

	out := &CreateAgency{
		Name:     name,
		Location: location,
		Category: category,
		TeamSize: teamSize,
		Rate:     rate,
		Rating:   rating,
	}
	if raw.Description != nil {
		out.Description = *raw.Description
	}
	return out, nil
}

// ValidateUpdate applies the per-field rules only to fields present in raw
// and returns a partial update; absent fields stay untouched on the stored
// record.
func ValidateUpdate(raw RawAgency, rules config.SchemaConfig) (model.AgencyUpdate, error) {
	var upd model.AgencyUpdate

	if raw.Name != nil {
		name, err := requireField("name", raw.Name)
		if err != nil {
			return model.AgencyUpdate{}, err
		}
		upd.Name = &name
	}
	if raw.Location != nil {
		location, err := requireField("location", raw.Location)
		if err != nil {
			return model.AgencyUpdate{}, err
		}
		upd.Location = &location
	}
	if raw.Rate != nil {
		rate, err := requireField("rate", raw.Rate)
		if err != nil {
			return model.AgencyUpdate{}, err
		}
		upd.Rate = &rate
	}
	if raw.TeamSize != nil {
		teamSize, err := coerceTeamSize(*raw.TeamSize)
		if err != nil {
			return model.AgencyUpdate{}, err
		}
		upd.TeamSize = &teamSize
	}
	if raw.Rating != nil {
		rating, err := coerceRating(*raw.Rating, rules)
		if err != nil {
			return model.AgencyUpdate{}, err
		}
		upd.Rating = &rating
	}
	if raw.Category != nil {
		category := strings.TrimSpace(*raw.Category)
		if rules.CategoryRequired && category == "" {
			return model.AgencyUpdate{}, missingField("category")
		}
		upd.Category = &category
	}
	if raw.Description != nil {
		upd.Description = raw.Description
	}

	return upd, nil
}

func requireField(field string, v *string) (string, error) {
	if v == nil {
		return "", missingField(field)
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", missingField(field)
	}
	return s, nil
}

// coerceTeamSize accepts integer text as well as numeric text with an
// integral value ("10", "10.0"); anything fractional, negative, or
// non-numeric is rejected.
func coerceTeamSize(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, invalidTeamSize(raw)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidTeamSize(raw)
	}
	if f < 0 || math.Trunc(f) != f || f > math.MaxInt32 {
		return 0, invalidTeamSize(raw)
	}
	return int(f), nil
}

func coerceRating(raw string, rules config.SchemaConfig) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidRating(raw)
	}
	if f < rules.RatingMin || f > rules.RatingMax {
		return 0, invalidRating(raw)
	}
	return f, nil
}
