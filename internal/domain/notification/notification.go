package notification

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType names a document-control event that can notify users.
type EventType string

const (
	EventVersionSubmitted      EventType = "version.submitted"
	EventVersionReviewApproved EventType = "version.review_approved"
	EventVersionApproved       EventType = "version.approved"
	EventVersionRejected       EventType = "version.rejected"
	EventVersionPublished      EventType = "version.published"
	EventVersionArchived       EventType = "version.archived"
	EventLockForceReleased     EventType = "lock.force_released"
)

// Status represents the delivery status of a notification
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
	StatusExpired   Status = "EXPIRED"
)

// Channel represents the notification delivery channel
type Channel string

const (
	ChannelSSE   Channel = "SSE"
	ChannelEmail Channel = "EMAIL"
)

// Priority represents the notification priority
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrExpired           = errors.New("notification has expired")
	ErrChannelFull       = errors.New("SSE message channel full")
	ErrClientNotFound    = errors.New("SSE client not found")
	ErrCannotRetry       = errors.New("cannot retry notification")
)

// Intent is the transition side effect produced by the lifecycle facade.
// Dispatch is asynchronous and best-effort; a failed dispatch never fails
// the transition that produced it.
type Intent struct {
	Event          EventType              `json:"event"`
	DocumentID     uuid.UUID              `json:"documentId"`
	DocumentNumber string                 `json:"documentNumber"`
	DocumentTitle  string                 `json:"documentTitle"`
	VersionID      uuid.UUID              `json:"versionId"`
	VersionString  string                 `json:"versionString"`
	Actor          string                 `json:"actor"`
	Department     string                 `json:"department,omitempty"`
	ChangeType     string                 `json:"changeType,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
	OccurredAt     time.Time              `json:"occurredAt"`
}

// Notification represents a notification to be sent to users
type Notification struct {
	ID             int64           `json:"id"`
	NotificationID uuid.UUID       `json:"notificationId"`
	Event          EventType       `json:"event"`
	DocumentID     uuid.UUID       `json:"documentId"`
	VersionID      uuid.UUID       `json:"versionId"`
	Channel        Channel         `json:"channel"`
	Priority       Priority        `json:"priority"`
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	Payload        json.RawMessage `json:"payload"`
	Status         Status          `json:"status"`
	TargetUserID   *string         `json:"targetUserId,omitempty"`
	TargetGroup    *string         `json:"targetGroup,omitempty"`
	RetryCount     int             `json:"retryCount"`
	MaxRetries     int             `json:"maxRetries"`
	LastError      *string         `json:"lastError,omitempty"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	SentAt         *time.Time      `json:"sentAt,omitempty"`
	DeliveredAt    *time.Time      `json:"deliveredAt,omitempty"`
	FailedAt       *time.Time      `json:"failedAt,omitempty"`
}

// NewNotification creates a new notification
func NewNotification(
	event EventType,
	documentID uuid.UUID,
	versionID uuid.UUID,
	channel Channel,
	priority Priority,
	title string,
	body string,
	payload json.RawMessage,
) *Notification {
	return &Notification{
		NotificationID: uuid.New(),
		Event:          event,
		DocumentID:     documentID,
		VersionID:      versionID,
		Channel:        channel,
		Priority:       priority,
		Title:          title,
		Body:           body,
		Payload:        payload,
		Status:         StatusPending,
		MaxRetries:     3,
		CreatedAt:      time.Now().UTC(),
	}
}

// SetTarget sets the notification target (user or group)
func (n *Notification) SetTarget(userID *string, group *string) {
	n.TargetUserID = userID
	n.TargetGroup = group
}

// SetExpiry sets the expiration time
func (n *Notification) SetExpiry(expiresAt time.Time) {
	n.ExpiresAt = &expiresAt
}

// IsExpired checks if the notification has expired
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().UTC().After(*n.ExpiresAt)
}

// CanTransitionTo checks if a transition to the target status is valid
func (n *Notification) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:   {StatusSent, StatusFailed, StatusExpired},
		StatusSent:      {StatusDelivered, StatusFailed},
		StatusDelivered: {},
		StatusFailed:    {StatusPending}, // Retry
		StatusExpired:   {},
	}

	allowed, ok := transitions[n.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// MarkSent marks the notification as sent
func (n *Notification) MarkSent() error {
	if n.IsExpired() {
		n.Status = StatusExpired
		return ErrExpired
	}
	if !n.CanTransitionTo(StatusSent) {
		return ErrInvalidTransition
	}
	n.Status = StatusSent
	now := time.Now().UTC()
	n.SentAt = &now
	return nil
}

// MarkDelivered marks the notification as delivered
func (n *Notification) MarkDelivered() error {
	if !n.CanTransitionTo(StatusDelivered) {
		return ErrInvalidTransition
	}
	n.Status = StatusDelivered
	now := time.Now().UTC()
	n.DeliveredAt = &now
	return nil
}

// MarkFailed marks the notification as failed
func (n *Notification) MarkFailed(errMsg string) error {
	if n.IsExpired() {
		n.Status = StatusExpired
		return ErrExpired
	}
	if !n.CanTransitionTo(StatusFailed) {
		return ErrInvalidTransition
	}
	n.Status = StatusFailed
	now := time.Now().UTC()
	n.FailedAt = &now
	n.LastError = &errMsg
	n.RetryCount++
	return nil
}

// MarkExpired marks the notification as expired
func (n *Notification) MarkExpired() error {
	if !n.CanTransitionTo(StatusExpired) {
		return ErrInvalidTransition
	}
	n.Status = StatusExpired
	return nil
}

// CanRetry checks if the notification can be retried
func (n *Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.RetryCount < n.MaxRetries && !n.IsExpired()
}

// ResetForRetry resets the notification for retry
func (n *Notification) ResetForRetry() error {
	if !n.CanRetry() {
		return ErrCannotRetry
	}
	n.Status = StatusPending
	n.FailedAt = nil
	return nil
}

// IsTerminal returns true if the notification is in a terminal state
func (n *Notification) IsTerminal() bool {
	return n.Status == StatusDelivered ||
		n.Status == StatusExpired ||
		(n.Status == StatusFailed && !n.CanRetry())
}

// RoutingRule decides which role group receives an event. Expression is a
// boolean expression over {event, status, change_type, department, priority}
// evaluated at dispatch time; an empty expression always matches.
type RoutingRule struct {
	ID          int64     `json:"id"`
	RuleID      uuid.UUID `json:"ruleId"`
	Name        string    `json:"name"`
	Event       EventType `json:"event"`
	Expression  string    `json:"expression,omitempty"`
	TargetGroup string    `json:"targetGroup"`
	Priority    Priority  `json:"priority"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SSEClient represents an active SSE connection
type SSEClient struct {
	ClientID    string
	UserID      *string
	Groups      []string
	ConnectedAt time.Time
	LastEventAt *time.Time
	MessageChan chan *SSEMessage
}

// NewSSEClient creates a new SSE client
func NewSSEClient(clientID string, userID *string, groups []string) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		UserID:      userID,
		Groups:      groups,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

// Close closes the client's message channel
func (c *SSEClient) Close() {
	close(c.MessageChan)
}

// SSEMessage represents a message to be sent via SSE
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Retry     *int            `json:"retry,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates a new SSE message
func NewSSEMessage(event string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Filter represents filters for querying notifications
type Filter struct {
	Event        *EventType
	DocumentID   *uuid.UUID
	VersionID    *uuid.UUID
	Channel      *Channel
	Status       *Status
	Priority     *Priority
	TargetUserID *string
	TargetGroup  *string
	Since        *time.Time
	Until        *time.Time
}
