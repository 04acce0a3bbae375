package mocks

import (
	"context"

	"agencydir/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAgencyRepository struct {
	mock.Mock
}

func (m *MockAgencyRepository) Create(ctx context.Context, agency *model.Agency) (*model.Agency, error) {
	args := m.Called(ctx, agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) FindByID(ctx context.Context, id string) (*model.Agency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) FindAll(ctx context.Context) ([]model.Agency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) FindFiltered(ctx context.Context, name, location string) ([]model.Agency, error) {
	args := m.Called(ctx, name, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) FindFeatured(ctx context.Context, minRating float64, limit int) ([]model.Agency, error) {
	args := m.Called(ctx, minRating, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) Update(ctx context.Context, id string, upd model.AgencyUpdate) (*model.Agency, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
