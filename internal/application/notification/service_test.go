package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/domain/notification"
	"github.com/docvault/docvault/internal/domain/notification/mocks"
)

func testIntent(event notification.EventType) *notification.Intent {
	return &notification.Intent{
		Event:          event,
		DocumentID:     uuid.New(),
		DocumentNumber: "SOP-QA-20250801-0001",
		DocumentTitle:  "Equipment Cleaning",
		VersionID:      uuid.New(),
		VersionString:  "v0.1",
		Actor:          "jblake",
		Department:     "Quality",
		ChangeType:     "MINOR",
		OccurredAt:     time.Now().UTC(),
	}
}

func newSvc() (*Service, *mocks.MockRepository, *mocks.MockSSEHub) {
	repo := &mocks.MockRepository{}
	hub := &mocks.MockSSEHub{}
	return NewService(repo, hub, zerolog.Nop()), repo, hub
}

func TestDispatchSync(t *testing.T) {
	t.Run("no rules falls back to the default route", func(t *testing.T) {
		svc, repo, hub := newSvc()
		intent := testIntent(notification.EventVersionSubmitted)

		var created *notification.Notification
		repo.On("ListRules", mock.Anything, notification.EventVersionSubmitted).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*notification.Notification) }).
			Return(nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		hub.On("BroadcastToGroup", "REVIEWER", mock.AnythingOfType("*notification.SSEMessage")).Return()

		require.NoError(t, svc.DispatchSync(context.Background(), intent))

		require.NotNil(t, created)
		require.NotNil(t, created.TargetGroup)
		assert.Equal(t, "REVIEWER", *created.TargetGroup)
		assert.Equal(t, notification.PriorityMedium, created.Priority)
		assert.Equal(t, notification.StatusDelivered, created.Status)
		assert.Contains(t, created.Title, "SOP-QA-20250801-0001")
		hub.AssertCalled(t, "BroadcastToGroup", "REVIEWER", mock.Anything)
	})

	t.Run("published events broadcast to everyone", func(t *testing.T) {
		svc, repo, hub := newSvc()
		intent := testIntent(notification.EventVersionPublished)
		intent.VersionString = "v1.0"

		repo.On("ListRules", mock.Anything, notification.EventVersionPublished).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		hub.On("BroadcastToAll", mock.AnythingOfType("*notification.SSEMessage")).Return()

		require.NoError(t, svc.DispatchSync(context.Background(), intent))
		hub.AssertCalled(t, "BroadcastToAll", mock.Anything)
	})

	t.Run("matching rule routes to its group", func(t *testing.T) {
		svc, repo, hub := newSvc()
		intent := testIntent(notification.EventVersionSubmitted)

		rule := &notification.RoutingRule{
			RuleID:      uuid.New(),
			Name:        "quality submissions",
			Event:       notification.EventVersionSubmitted,
			Expression:  "department == 'Quality'",
			TargetGroup: "QA_LEADS",
			Priority:    notification.PriorityHigh,
			Enabled:     true,
		}
		var created *notification.Notification
		repo.On("ListRules", mock.Anything, notification.EventVersionSubmitted).Return([]*notification.RoutingRule{rule}, nil)
		repo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*notification.Notification) }).
			Return(nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		hub.On("BroadcastToGroup", "QA_LEADS", mock.Anything).Return()

		require.NoError(t, svc.DispatchSync(context.Background(), intent))

		require.NotNil(t, created)
		require.NotNil(t, created.TargetGroup)
		assert.Equal(t, "QA_LEADS", *created.TargetGroup)
		assert.Equal(t, notification.PriorityHigh, created.Priority)
		hub.AssertNotCalled(t, "BroadcastToGroup", "REVIEWER", mock.Anything)
	})

	t.Run("non-matching and disabled rules fall back to the default", func(t *testing.T) {
		svc, repo, hub := newSvc()
		intent := testIntent(notification.EventVersionSubmitted)

		rules := []*notification.RoutingRule{
			{RuleID: uuid.New(), Event: notification.EventVersionSubmitted, Expression: "department == 'Engineering'", TargetGroup: "ENG", Priority: notification.PriorityLow, Enabled: true},
			{RuleID: uuid.New(), Event: notification.EventVersionSubmitted, Expression: "", TargetGroup: "DISABLED", Priority: notification.PriorityLow, Enabled: false},
		}
		repo.On("ListRules", mock.Anything, notification.EventVersionSubmitted).Return(rules, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		hub.On("BroadcastToGroup", "REVIEWER", mock.Anything).Return()

		require.NoError(t, svc.DispatchSync(context.Background(), intent))
		hub.AssertCalled(t, "BroadcastToGroup", "REVIEWER", mock.Anything)
	})

	t.Run("broken rule expression is skipped", func(t *testing.T) {
		svc, repo, hub := newSvc()
		intent := testIntent(notification.EventVersionRejected)

		rule := &notification.RoutingRule{
			RuleID: uuid.New(), Event: notification.EventVersionRejected,
			Expression: "department ==", TargetGroup: "BROKEN", Enabled: true,
		}
		repo.On("ListRules", mock.Anything, notification.EventVersionRejected).Return([]*notification.RoutingRule{rule}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		hub.On("BroadcastToGroup", "AUTHOR", mock.Anything).Return()

		require.NoError(t, svc.DispatchSync(context.Background(), intent))
		hub.AssertCalled(t, "BroadcastToGroup", "AUTHOR", mock.Anything)
	})
}

func TestEvaluateRouting(t *testing.T) {
	intent := testIntent(notification.EventVersionSubmitted)
	intent.Extra = map[string]interface{}{"holder": "jblake"}

	tests := []struct {
		name       string
		expression string
		want       bool
		wantErr    bool
	}{
		{"empty matches", "", true, false},
		{"literal true", "true", true, false},
		{"literal false", "false", false, false},
		{"department match", "department == 'Quality'", true, false},
		{"department mismatch", "department == 'Engineering'", false, false},
		{"compound", "event == 'version.submitted' && change_type == 'MINOR'", true, false},
		{"extra params", "holder == 'jblake'", true, false},
		{"non-boolean result", "1 + 1", false, true},
		{"malformed", "department ==", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluateRouting(tt.expression, intent)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSend(t *testing.T) {
	t.Run("expired notification is marked and not sent", func(t *testing.T) {
		svc, repo, hub := newSvc()
		n := notification.NewNotification(notification.EventVersionSubmitted, uuid.New(), uuid.New(),
			notification.ChannelSSE, notification.PriorityMedium, "t", "b", nil)
		past := time.Now().Add(-1 * time.Hour)
		n.ExpiresAt = &past

		repo.On("Update", mock.Anything, n).Return(nil)

		err := svc.send(context.Background(), n)
		assert.ErrorIs(t, err, notification.ErrExpired)
		assert.Equal(t, notification.StatusExpired, n.Status)
		hub.AssertNotCalled(t, "BroadcastToAll", mock.Anything)
	})

	t.Run("targeted user delivery", func(t *testing.T) {
		svc, repo, hub := newSvc()
		n := notification.NewNotification(notification.EventVersionRejected, uuid.New(), uuid.New(),
			notification.ChannelSSE, notification.PriorityHigh, "t", "b", nil)
		userID := uuid.NewString()
		n.SetTarget(&userID, nil)

		repo.On("Update", mock.Anything, n).Return(nil)
		hub.On("BroadcastToUser", userID, mock.Anything).Return()

		require.NoError(t, svc.send(context.Background(), n))
		assert.Equal(t, notification.StatusDelivered, n.Status)
		hub.AssertCalled(t, "BroadcastToUser", userID, mock.Anything)
	})
}

func TestProcessRetryable(t *testing.T) {
	svc, repo, hub := newSvc()
	n := notification.NewNotification(notification.EventVersionApproved, uuid.New(), uuid.New(),
		notification.ChannelSSE, notification.PriorityHigh, "t", "b", nil)
	require.NoError(t, n.MarkSent())
	require.NoError(t, n.MarkFailed("broker unavailable"))

	repo.On("ListRetryableNotifications", mock.Anything, 50).Return([]*notification.Notification{n}, nil)
	repo.On("Update", mock.Anything, n).Return(nil)
	hub.On("BroadcastToAll", mock.Anything).Return()

	sent, err := svc.ProcessRetryable(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, notification.StatusDelivered, n.Status)
	assert.Equal(t, 1, n.RetryCount)
}
