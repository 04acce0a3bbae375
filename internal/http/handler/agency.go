package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"agencydir/internal/image"
	"agencydir/internal/service"
	"agencydir/internal/validation"
)

// rawFromForm lifts the multipart value set into the validation layer's raw
// field set. Absent keys stay nil so partial-update semantics survive the
// wire format.
func rawFromForm(form *multipart.Form) validation.RawAgency {
	var raw validation.RawAgency
	field := func(key string) *string {
		vals, ok := form.Value[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}
	raw.Name = field("name")
	raw.Description = field("description")
	raw.Location = field("location")
	raw.Category = field("category")
	raw.TeamSize = field("teamSize")
	raw.Rate = field("rate")
	raw.Rating = field("rating")
	return raw
}

// logoFromForm opens the optional "image" part. The returned closer is nil
// when no file was uploaded.
func logoFromForm(form *multipart.Form) (*image.LogoUpload, multipart.File, error) {
	fhs := form.File["image"]
	if len(fhs) == 0 {
		return nil, nil, nil
	}
	fh := fhs[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &image.LogoUpload{
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Content:     f,
	}, f, nil
}

// mapServiceError translates core errors into the standard envelope.
func mapServiceError(c *fiber.Ctx, err error) error {
	if fe, ok := validation.AsFieldError(err); ok {
		return writeError(c, fiber.StatusBadRequest, fe.Code, fe.Error())
	}
	if errors.Is(err, image.ErrUnsupportedUpload) {
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_UPLOAD", "unsupported image upload")
	}
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "agency not found")
	}
	if errors.Is(err, service.ErrIDRequired) {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ListAgencies returns every listing, optionally filtered by the ?name= and
// ?location= substring parameters (both must match when both are given).
func ListAgencies(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Search(c.UserContext(), c.Query("name"), c.Query("location"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// FeaturedAgencies returns the configured featured subset.
func FeaturedAgencies(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Featured(c.UserContext())
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetAgency returns a single listing by ID.
func GetAgency(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		agency, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(agency)
	}
}

// CreateAgency creates a listing from multipart/form-data fields with an
// optional logo file under the "image" key.
func CreateAgency(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "multipart form body is required")
		}
		logo, f, err := logoFromForm(form)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		if f != nil {
			defer f.Close()
		}

		agency, err := svc.Create(c.UserContext(), rawFromForm(form), logo)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(agency)
	}
}

// UpdateAgency partially updates a listing; every multipart field is
// optional and only the supplied fields change. A new "image" file replaces
// the current logo.
func UpdateAgency(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "multipart form body is required")
		}
		logo, f, err := logoFromForm(form)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		if f != nil {
			defer f.Close()
		}

		agency, err := svc.Update(c.UserContext(), id, rawFromForm(form), logo)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(agency)
	}
}

// DeleteAgency removes a listing and releases its logo.
func DeleteAgency(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteAgencies deletes each listed id independently and reports the
// aggregate result; one id's failure never aborts the rest.
func BulkDeleteAgencies(svc service.AgencyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req bulkDeleteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if len(req.IDs) == 0 {
			return writeError(c, fiber.StatusBadRequest, "IDS_REQUIRED", "ids is required")
		}
		return c.JSON(svc.BulkDelete(c.UserContext(), req.IDs))
	}
}
