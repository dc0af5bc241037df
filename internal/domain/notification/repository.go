package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// Notification operations
	Create(ctx context.Context, notification *Notification) error
	GetByID(ctx context.Context, notificationID uuid.UUID) (*Notification, error)
	GetByVersionID(ctx context.Context, versionID uuid.UUID) ([]*Notification, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Notification, error)
	Update(ctx context.Context, notification *Notification) error
	UpdateStatus(ctx context.Context, notificationID uuid.UUID, status Status) error

	// Routing rules
	ListRules(ctx context.Context, event EventType) ([]*RoutingRule, error)

	// Retry support
	ListPendingNotifications(ctx context.Context, limit int) ([]*Notification, error)
	ListRetryableNotifications(ctx context.Context, limit int) ([]*Notification, error)

	// Expiration
	ExpireNotifications(ctx context.Context) (int64, error)
}

// SSEHub defines the interface for managing SSE connections
type SSEHub interface {
	// Client management
	Register(client *SSEClient)
	Unregister(clientID string)
	GetClient(clientID string) *SSEClient
	GetClientCount() int

	// Broadcasting
	BroadcastToAll(message *SSEMessage)
	BroadcastToUser(userID string, message *SSEMessage)
	BroadcastToGroup(group string, message *SSEMessage)
	SendToClient(clientID string, message *SSEMessage) error

	// Lifecycle
	Start(ctx context.Context)
	Stop()
}
