package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agencydir/internal/http/middleware"
	"agencydir/internal/image"
	"agencydir/internal/model"
	"agencydir/internal/service"
	serviceMocks "agencydir/internal/service/mocks"
	"agencydir/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// multipartBody builds a multipart form from fields plus an optional file
// part named "image".
func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="image"; filename="` + filename + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		part.Write(content)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListAgencies(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Get("/agencies", ListAgencies(mockSvc))

	t.Run("success without filters", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "", "").
			Return([]model.Agency{{ID: uuid.New().String(), Name: "Acme"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Agency
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		assert.Equal(t, "Acme", result[0].Name)
		mockSvc.AssertExpectations(t)
	})

	t.Run("name and location filters combine", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "acme", "ny").
			Return([]model.Agency{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies?name=acme&location=ny", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Agency
		json.NewDecoder(resp.Body).Decode(&result)
		assert.NotNil(t, result)
		assert.Empty(t, result)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "", "").Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestFeaturedAgencies(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Get("/agencies/featured", FeaturedAgencies(mockSvc))

	mockSvc.On("Featured", mock.Anything).
		Return([]model.Agency{{ID: uuid.New().String(), Rating: 5}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/agencies/featured", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result []model.Agency
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Len(t, result, 1)
	mockSvc.AssertExpectations(t)
}

func TestGetAgency(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Get("/agencies/:id", GetAgency(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Agency{ID: id, Name: "Acme"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Agency
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/agencies/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateAgency(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Post("/agencies", CreateAgency(mockSvc))

	fields := map[string]string{
		"name":     "Acme",
		"location": "NY",
		"teamSize": "10",
		"rate":     "$50/hr",
		"rating":   "4",
	}

	t.Run("success without image", func(t *testing.T) {
		expected := &model.Agency{ID: uuid.New().String(), Name: "Acme", Rating: 4}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(raw validation.RawAgency) bool {
			return raw.Name != nil && *raw.Name == "Acme" &&
				raw.TeamSize != nil && *raw.TeamSize == "10" &&
				raw.Description == nil && raw.Category == nil
		}), (*image.LogoUpload)(nil)).Return(expected, nil).Once()

		body, ct := multipartBody(t, fields, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Agency
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		assert.Empty(t, result.ImageRef)
		mockSvc.AssertExpectations(t)
	})

	t.Run("success with image", func(t *testing.T) {
		expected := &model.Agency{ID: uuid.New().String(), ImageRef: "agencies/logo.png"}
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(logo *image.LogoUpload) bool {
			return logo != nil && logo.Filename == "logo.png" && logo.ContentType == "image/png"
		})).Return(expected, nil).Once()

		body, ct := multipartBody(t, fields, "logo.png", "image/png", []byte("png bytes"))
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation failure maps to 400", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, (*image.LogoUpload)(nil)).
			Return(nil, &validation.FieldError{Code: validation.CodeInvalidRating, Field: "rating", Value: "6"}).Once()

		body, ct := multipartBody(t, map[string]string{"rating": "6"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, validation.CodeInvalidRating, res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported upload maps to 400", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, image.ErrUnsupportedUpload).Once()

		body, ct := multipartBody(t, fields, "evil.exe", "application/octet-stream", []byte{0x4d, 0x5a})
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_UPLOAD", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non-multipart body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/agencies", strings.NewReader(`{"name":"Acme"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "MULTIPART_REQUIRED", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, (*image.LogoUpload)(nil)).
			Return(nil, errors.New("db fail")).Once()

		body, ct := multipartBody(t, fields, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateAgency(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Put("/agencies/:id", UpdateAgency(mockSvc))

	t.Run("partial update carries only present fields", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(raw validation.RawAgency) bool {
			return raw.Location != nil && *raw.Location == "Berlin" &&
				raw.Name == nil && raw.Rating == nil && raw.TeamSize == nil
		}), (*image.LogoUpload)(nil)).Return(&model.Agency{ID: id, Location: "Berlin"}, nil).Once()

		body, ct := multipartBody(t, map[string]string{"location": "Berlin"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPut, "/agencies/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Agency
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Berlin", result.Location)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.Anything, (*image.LogoUpload)(nil)).
			Return(nil, service.ErrNotFound).Once()

		body, ct := multipartBody(t, map[string]string{"location": "Berlin"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPut, "/agencies/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid rating rejection", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, id, mock.Anything, (*image.LogoUpload)(nil)).
			Return(nil, &validation.FieldError{Code: validation.CodeInvalidRating, Field: "rating", Value: "6"}).Once()

		body, ct := multipartBody(t, map[string]string{"rating": "6"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPut, "/agencies/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, validation.CodeInvalidRating, res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"location": "Berlin"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPut, "/agencies/not-a-uuid", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestDeleteAgency(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Delete("/agencies/:id", DeleteAgency(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/agencies/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestBulkDeleteAgencies(t *testing.T) {
	mockSvc := new(serviceMocks.MockAgencyService)
	app := fiber.New()
	app.Post("/agencies/bulk-delete", BulkDeleteAgencies(mockSvc))

	t.Run("aggregate result", func(t *testing.T) {
		mockSvc.On("BulkDelete", mock.Anything, []string{"id-1", "id-2", "id-3"}).
			Return(&service.BulkDeleteResult{
				Succeeded: []string{"id-1", "id-3"},
				Failed:    map[string]string{"id-2": "not_found"},
			}).Once()

		body := bytes.NewBufferString(`{"ids":["id-1","id-2","id-3"]}`)
		req := httptest.NewRequest(http.MethodPost, "/agencies/bulk-delete", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.BulkDeleteResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.ElementsMatch(t, []string{"id-1", "id-3"}, result.Succeeded)
		assert.Equal(t, "not_found", result.Failed["id-2"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty ids", func(t *testing.T) {
		body := bytes.NewBufferString(`{"ids":[]}`)
		req := httptest.NewRequest(http.MethodPost, "/agencies/bulk-delete", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "IDS_REQUIRED", res.Error.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		body := bytes.NewBufferString(`not json`)
		req := httptest.NewRequest(http.MethodPost, "/agencies/bulk-delete", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockAgencyService)
	gate := middleware.AdminGate(middleware.TrustedHeaderAuthorizer("X-Admin-Subject"))
	RegisterRoutes(app, nil, mockSvc, gate)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("write surface requires the admin gate", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"name": "Acme"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/agencies", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
	})

	t.Run("read surface stays public", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "", "").Return([]model.Agency{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/agencies", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
