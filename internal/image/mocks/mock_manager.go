package mocks

import (
	"context"

	"agencydir/internal/image"

	"github.com/stretchr/testify/mock"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Attach(ctx context.Context, up image.LogoUpload) (string, error) {
	args := m.Called(ctx, up)
	return args.String(0), args.Error(1)
}

func (m *MockManager) Detach(ctx context.Context, imageRef string) error {
	args := m.Called(ctx, imageRef)
	return args.Error(0)
}

func (m *MockManager) Discard(ctx context.Context, imageRef string) error {
	args := m.Called(ctx, imageRef)
	return args.Error(0)
}
