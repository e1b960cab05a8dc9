package mocks

import (
	"context"

	"github.com/ivlev/adforge/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockCompleter is a testify mock of llm.Completer.
type MockCompleter struct {
	mock.Mock
}

// NewMockCompleter registers cleanup that asserts expectations.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	ret := m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}
