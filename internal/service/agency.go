package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agencydir/internal/config"
	"agencydir/internal/image"
	"agencydir/internal/model"
	"agencydir/internal/repository"
	"agencydir/internal/validation"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("agency not found")
)

// BulkDeleteResult aggregates per-id outcomes of a bulk delete. One id's
// failure never suppresses the others' results.
type BulkDeleteResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// AgencyService defines the use cases for the listing lifecycle.
type AgencyService interface {
	// Create validates the raw field set, attaches the logo if one was
	// uploaded, and persists the listing. The stored object is rolled back
	// if the DB save fails, so no partial record is ever visible.
	Create(ctx context.Context, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error)

	// Get returns a single listing by its ID.
	Get(ctx context.Context, id string) (*model.Agency, error)

	// List returns every listing in creation order.
	List(ctx context.Context) ([]model.Agency, error)

	// Search filters listings by name and location substrings; both
	// predicates must hold when both are given.
	Search(ctx context.Context, name, location string) ([]model.Agency, error)

	// Featured returns the configured featured subset.
	Featured(ctx context.Context) ([]model.Agency, error)

	// Update applies only the fields present in raw; a new logo replaces
	// the previous one, which is then released from storage.
	Update(ctx context.Context, id string, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error)

	// Delete releases the listing's logo and removes the record.
	Delete(ctx context.Context, id string) error

	// BulkDelete deletes each id independently and reports the aggregate.
	BulkDelete(ctx context.Context, ids []string) *BulkDeleteResult
}

// agencyService is a concrete implementation of AgencyService.
type agencyService struct {
	repo     repository.AgencyRepository
	images   image.Manager
	rules    config.SchemaConfig
	featured config.FeaturedConfig
}

// NewAgencyService constructs a new AgencyService.
func NewAgencyService(repo repository.AgencyRepository, images image.Manager, rules config.SchemaConfig, featured config.FeaturedConfig) AgencyService {
	return &agencyService{repo: repo, images: images, rules: rules, featured: featured}
}

func (s *agencyService) Create(ctx context.Context, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error) {
	payload, err := validation.ValidateCreate(raw, s.rules)
	if err != nil {
		return nil, err
	}

	imageRef := ""
	if logo != nil {
		imageRef, err = s.images.Attach(ctx, *logo)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	agency := &model.Agency{
		ID:          uuid.New().String(),
		Name:        payload.Name,
		Description: payload.Description,
		Location:    payload.Location,
		Category:    payload.Category,
		TeamSize:    payload.TeamSize,
		Rate:        payload.Rate,
		Rating:      payload.Rating,
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, agency)
	if err != nil {
		// Rollback: delete the just-stored logo object
		if imageRef != "" {
			if delErr := s.images.Discard(ctx, imageRef); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *agencyService) Get(ctx context.Context, id string) (*model.Agency, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	agency, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return agency, nil
}

func (s *agencyService) List(ctx context.Context) ([]model.Agency, error) {
	return s.repo.FindAll(ctx)
}

func (s *agencyService) Search(ctx context.Context, name, location string) ([]model.Agency, error) {
	if name == "" && location == "" {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindFiltered(ctx, name, location)
}

func (s *agencyService) Featured(ctx context.Context) ([]model.Agency, error) {
	return s.repo.FindFeatured(ctx, s.featured.MinRating, s.featured.Limit)
}

func (s *agencyService) Update(ctx context.Context, id string, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	upd, err := validation.ValidateUpdate(raw, s.rules)
	if err != nil {
		return nil, err
	}

	// Fetch the current row first: it yields NotFound before any storage
	// write, and the previous image key for cleanup after a replacement.
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	newRef := ""
	if logo != nil {
		newRef, err = s.images.Attach(ctx, *logo)
		if err != nil {
			return nil, err
		}
		upd.ImageRef = &newRef
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if newRef != "" {
			_ = s.images.Discard(ctx, newRef)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db update failed: %w", err)
	}

	// The replaced logo is now unreferenced; release it best-effort. A
	// failure here leaves an orphan object, never a dangling record.
	if newRef != "" && current.ImageRef != "" && current.ImageRef != newRef {
		_ = s.images.Detach(ctx, current.ImageRef)
	}
	return updated, nil
}

func (s *agencyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	agency, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Release the logo first; if this fails, keep the row so the admin can retry
	if err := s.images.Detach(ctx, agency.ImageRef); err != nil {
		return fmt.Errorf("detach logo: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row vanished between the find and the delete; the end state is
			// the one requested.
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *agencyService) BulkDelete(ctx context.Context, ids []string) *BulkDeleteResult {
	res := &BulkDeleteResult{
		Succeeded: make([]string, 0, len(ids)),
		Failed:    make(map[string]string),
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			res.Failed[id] = reasonFor(err)
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIDRequired):
		return "id_required"
	default:
		return "internal_error"
	}
}
