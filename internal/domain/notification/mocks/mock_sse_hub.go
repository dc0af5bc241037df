package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/docvault/docvault/internal/domain/notification"
)

// MockSSEHub is a mock implementation of notification.SSEHub
type MockSSEHub struct {
	mock.Mock
}

func (m *MockSSEHub) Register(client *notification.SSEClient) {
	m.Called(client)
}

func (m *MockSSEHub) Unregister(clientID string) {
	m.Called(clientID)
}

func (m *MockSSEHub) GetClient(clientID string) *notification.SSEClient {
	args := m.Called(clientID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*notification.SSEClient)
}

func (m *MockSSEHub) GetClientCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockSSEHub) BroadcastToAll(message *notification.SSEMessage) {
	m.Called(message)
}

func (m *MockSSEHub) BroadcastToUser(userID string, message *notification.SSEMessage) {
	m.Called(userID, message)
}

func (m *MockSSEHub) BroadcastToGroup(group string, message *notification.SSEMessage) {
	m.Called(group, message)
}

func (m *MockSSEHub) SendToClient(clientID string, message *notification.SSEMessage) error {
	args := m.Called(clientID, message)
	return args.Error(0)
}

func (m *MockSSEHub) Start(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockSSEHub) Stop() {
	m.Called()
}
