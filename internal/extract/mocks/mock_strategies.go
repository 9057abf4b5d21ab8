package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

type MockDocxExtractor struct {
	mock.Mock
}

func (m *MockDocxExtractor) Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	args := m.Called(ctx, data, fileName)
	return args.String(0), args.Error(1)
}
