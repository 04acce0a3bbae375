package mocks

import (
	"context"

	"agencydir/internal/image"
	"agencydir/internal/model"
	"agencydir/internal/service"
	"agencydir/internal/validation"

	"github.com/stretchr/testify/mock"
)

type MockAgencyService struct {
	mock.Mock
}

func (m *MockAgencyService) Create(ctx context.Context, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error) {
	args := m.Called(ctx, raw, logo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyService) Get(ctx context.Context, id string) (*model.Agency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyService) List(ctx context.Context) ([]model.Agency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyService) Search(ctx context.Context, name, location string) ([]model.Agency, error) {
	args := m.Called(ctx, name, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyService) Featured(ctx context.Context) ([]model.Agency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyService) Update(ctx context.Context, id string, raw validation.RawAgency, logo *image.LogoUpload) (*model.Agency, error) {
	args := m.Called(ctx, id, raw, logo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAgencyService) BulkDelete(ctx context.Context, ids []string) *service.BulkDeleteResult {
	args := m.Called(ctx, ids)
	return args.Get(0).(*service.BulkDeleteResult)
}
