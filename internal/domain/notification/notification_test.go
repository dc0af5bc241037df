package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotification() *Notification {
	return NewNotification(EventVersionSubmitted, uuid.New(), uuid.New(), ChannelSSE, PriorityMedium, "Title", "Body", nil)
}

func TestNewNotification(t *testing.T) {
	documentID := uuid.New()
	versionID := uuid.New()
	payload := json.RawMessage(`{"key": "value"}`)

	notification := NewNotification(EventVersionPublished, documentID, versionID, ChannelSSE, PriorityHigh, "Test Title", "Test Body", payload)

	require.NotNil(t, notification)
	assert.NotEqual(t, uuid.Nil, notification.NotificationID)
	assert.Equal(t, EventVersionPublished, notification.Event)
	assert.Equal(t, documentID, notification.DocumentID)
	assert.Equal(t, versionID, notification.VersionID)
	assert.Equal(t, ChannelSSE, notification.Channel)
	assert.Equal(t, PriorityHigh, notification.Priority)
	assert.Equal(t, "Test Title", notification.Title)
	assert.Equal(t, "Test Body", notification.Body)
	assert.Equal(t, payload, notification.Payload)
	assert.Equal(t, StatusPending, notification.Status)
	assert.Equal(t, 3, notification.MaxRetries)
	assert.Equal(t, 0, notification.RetryCount)
	assert.False(t, notification.CreatedAt.IsZero())
	assert.Nil(t, notification.TargetUserID)
	assert.Nil(t, notification.TargetGroup)
	assert.Nil(t, notification.ExpiresAt)
}

func TestNotification_SetTarget(t *testing.T) {
	t.Run("set user target", func(t *testing.T) {
		notification := newTestNotification()
		userID := "user123"

		notification.SetTarget(&userID, nil)

		require.NotNil(t, notification.TargetUserID)
		assert.Equal(t, "user123", *notification.TargetUserID)
		assert.Nil(t, notification.TargetGroup)
	})

	t.Run("set group target", func(t *testing.T) {
		notification := newTestNotification()
		group := "REVIEWER"

		notification.SetTarget(nil, &group)

		assert.Nil(t, notification.TargetUserID)
		require.NotNil(t, notification.TargetGroup)
		assert.Equal(t, "REVIEWER", *notification.TargetGroup)
	})
}

func TestNotification_SetExpiry(t *testing.T) {
	notification := newTestNotification()
	assert.Nil(t, notification.ExpiresAt)

	expiryTime := time.Now().Add(24 * time.Hour)
	notification.SetExpiry(expiryTime)

	require.NotNil(t, notification.ExpiresAt)
	assert.Equal(t, expiryTime, *notification.ExpiresAt)
}

func TestNotification_IsExpired(t *testing.T) {
	t.Run("not expired when ExpiresAt is nil", func(t *testing.T) {
		notification := newTestNotification()
		assert.False(t, notification.IsExpired())
	})

	t.Run("not expired when ExpiresAt is in the future", func(t *testing.T) {
		notification := newTestNotification()
		notification.SetExpiry(time.Now().Add(1 * time.Hour))

		assert.False(t, notification.IsExpired())
	})

	t.Run("expired when ExpiresAt is in the past", func(t *testing.T) {
		notification := newTestNotification()
		notification.SetExpiry(time.Now().Add(-1 * time.Hour))

		assert.True(t, notification.IsExpired())
	})
}

func TestNotification_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{name: "PENDING -> SENT", from: StatusPending, to: StatusSent, expected: true},
		{name: "PENDING -> FAILED", from: StatusPending, to: StatusFailed, expected: true},
		{name: "PENDING -> EXPIRED", from: StatusPending, to: StatusExpired, expected: true},
		{name: "PENDING -> DELIVERED (invalid)", from: StatusPending, to: StatusDelivered, expected: false},

		{name: "SENT -> DELIVERED", from: StatusSent, to: StatusDelivered, expected: true},
		{name: "SENT -> FAILED", from: StatusSent, to: StatusFailed, expected: true},
		{name: "SENT -> PENDING (invalid)", from: StatusSent, to: StatusPending, expected: false},
		{name: "SENT -> EXPIRED (invalid)", from: StatusSent, to: StatusExpired, expected: false},

		{name: "DELIVERED -> PENDING (invalid)", from: StatusDelivered, to: StatusPending, expected: false},
		{name: "DELIVERED -> FAILED (invalid)", from: StatusDelivered, to: StatusFailed, expected: false},

		{name: "FAILED -> PENDING (retry)", from: StatusFailed, to: StatusPending, expected: true},
		{name: "FAILED -> SENT (invalid)", from: StatusFailed, to: StatusSent, expected: false},

		{name: "EXPIRED -> PENDING (invalid)", from: StatusExpired, to: StatusPending, expected: false},
		{name: "EXPIRED -> FAILED (invalid)", from: StatusExpired, to: StatusFailed, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notification := newTestNotification()
			notification.Status = tt.from
			assert.Equal(t, tt.expected, notification.CanTransitionTo(tt.to))
		})
	}
}

func TestNotification_MarkSent(t *testing.T) {
	t.Run("success from PENDING", func(t *testing.T) {
		notification := newTestNotification()
		assert.Nil(t, notification.SentAt)

		err := notification.MarkSent()

		require.NoError(t, err)
		assert.Equal(t, StatusSent, notification.Status)
		require.NotNil(t, notification.SentAt)
	})

	t.Run("error when already expired", func(t *testing.T) {
		notification := newTestNotification()
		notification.SetExpiry(time.Now().Add(-1 * time.Hour))

		err := notification.MarkSent()

		assert.ErrorIs(t, err, ErrExpired)
		assert.Equal(t, StatusExpired, notification.Status)
	})

	t.Run("error from invalid state", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusDelivered

		err := notification.MarkSent()

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusDelivered, notification.Status)
	})
}

func TestNotification_MarkDelivered(t *testing.T) {
	t.Run("success from SENT", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusSent

		err := notification.MarkDelivered()

		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, notification.Status)
		require.NotNil(t, notification.DeliveredAt)
	})

	t.Run("error from invalid state", func(t *testing.T) {
		notification := newTestNotification()

		err := notification.MarkDelivered()

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusPending, notification.Status)
	})
}

func TestNotification_MarkFailed(t *testing.T) {
	t.Run("records error and increments retry count", func(t *testing.T) {
		notification := newTestNotification()

		err := notification.MarkFailed("connection refused")

		require.NoError(t, err)
		assert.Equal(t, StatusFailed, notification.Status)
		assert.Equal(t, 1, notification.RetryCount)
		require.NotNil(t, notification.FailedAt)
		require.NotNil(t, notification.LastError)
		assert.Equal(t, "connection refused", *notification.LastError)
	})

	t.Run("error from invalid state", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusDelivered

		err := notification.MarkFailed("error")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusDelivered, notification.Status)
	})

	t.Run("error when already expired", func(t *testing.T) {
		notification := newTestNotification()
		notification.SetExpiry(time.Now().Add(-1 * time.Hour))

		err := notification.MarkFailed("connection refused")

		assert.ErrorIs(t, err, ErrExpired)
		assert.Equal(t, StatusExpired, notification.Status)
	})
}

func TestNotification_MarkExpired(t *testing.T) {
	t.Run("success from PENDING", func(t *testing.T) {
		notification := newTestNotification()

		err := notification.MarkExpired()

		require.NoError(t, err)
		assert.Equal(t, StatusExpired, notification.Status)
	})

	t.Run("error from invalid state", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusDelivered

		err := notification.MarkExpired()

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestNotification_CanRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		retryCount int
		expired    bool
		expected   bool
	}{
		{name: "failed with retries remaining", status: StatusFailed, retryCount: 1, expected: true},
		{name: "max retries reached", status: StatusFailed, retryCount: 3, expected: false},
		{name: "expired", status: StatusFailed, retryCount: 1, expired: true, expected: false},
		{name: "not in failed state", status: StatusPending, retryCount: 0, expected: false},
		{name: "delivered state", status: StatusDelivered, retryCount: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notification := newTestNotification()
			notification.Status = tt.status
			notification.RetryCount = tt.retryCount
			if tt.expired {
				notification.SetExpiry(time.Now().Add(-1 * time.Hour))
			}

			assert.Equal(t, tt.expected, notification.CanRetry())
		})
	}
}

func TestNotification_ResetForRetry(t *testing.T) {
	t.Run("success when can retry", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusFailed
		notification.RetryCount = 1
		now := time.Now()
		notification.FailedAt = &now

		err := notification.ResetForRetry()

		require.NoError(t, err)
		assert.Equal(t, StatusPending, notification.Status)
		assert.Nil(t, notification.FailedAt)
	})

	t.Run("error when max retries exceeded", func(t *testing.T) {
		notification := newTestNotification()
		notification.Status = StatusFailed
		notification.RetryCount = 3

		err := notification.ResetForRetry()

		assert.ErrorIs(t, err, ErrCannotRetry)
		assert.Equal(t, StatusFailed, notification.Status)
	})
}

func TestNotification_IsTerminal(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		retryCount int
		expected   bool
	}{
		{name: "delivered is terminal", status: StatusDelivered, expected: true},
		{name: "expired is terminal", status: StatusExpired, expected: true},
		{name: "failed with retries left is not terminal", status: StatusFailed, retryCount: 1, expected: false},
		{name: "failed at max retries is terminal", status: StatusFailed, retryCount: 3, expected: true},
		{name: "pending is not terminal", status: StatusPending, expected: false},
		{name: "sent is not terminal", status: StatusSent, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notification := newTestNotification()
			notification.Status = tt.status
			notification.RetryCount = tt.retryCount
			assert.Equal(t, tt.expected, notification.IsTerminal())
		})
	}
}

func TestSSEClient(t *testing.T) {
	userID := "user123"
	client := NewSSEClient("client-1", &userID, []string{"REVIEWER"})

	require.NotNil(t, client)
	assert.Equal(t, "client-1", client.ClientID)
	assert.Equal(t, []string{"REVIEWER"}, client.Groups)
	assert.NotNil(t, client.MessageChan)
	assert.Equal(t, 100, cap(client.MessageChan))
}

func TestNewSSEMessage(t *testing.T) {
	data := json.RawMessage(`{"versionId": "abc"}`)
	msg := NewSSEMessage(string(EventVersionPublished), data)

	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "version.published", msg.Event)
	assert.Equal(t, data, msg.Data)
	assert.False(t, msg.Timestamp.IsZero())
}
