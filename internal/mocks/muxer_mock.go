package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMuxer is a testify mock of engine.AudioMuxer.
type MockMuxer struct {
	mock.Mock
}

func NewMockMuxer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMuxer {
	m := &MockMuxer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMuxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string) (string, error) {
	ret := m.Called(ctx, videoPath, audioPath, outputPath)
	return ret.String(0), ret.Error(1)
}
