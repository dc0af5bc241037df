package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docvault/docvault/internal/domain/notification"
	"github.com/docvault/docvault/internal/domain/user"
)

// Service routes lifecycle events to users. Dispatch is best-effort: a
// notification failure is logged and never propagated to the transition
// that produced the event.
type Service struct {
	repo   notification.Repository
	sseHub notification.SSEHub
	logger zerolog.Logger
}

// NewService creates a notification service.
func NewService(repo notification.Repository, sseHub notification.SSEHub, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		sseHub: sseHub,
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

// defaultRoute is the built-in event routing used when no stored rule
// matches: each event lands on the role group expected to act next. A nil
// group broadcasts to everyone.
func defaultRoute(event notification.EventType) (*string, notification.Priority) {
	group := func(r user.Role) *string {
		g := string(r)
		return &g
	}
	switch event {
	case notification.EventVersionSubmitted:
		return group(user.RoleReviewer), notification.PriorityMedium
	case notification.EventVersionReviewApproved:
		return group(user.RoleApprover), notification.PriorityMedium
	case notification.EventVersionApproved:
		return group(user.RoleAdmin), notification.PriorityHigh
	case notification.EventVersionRejected:
		return group(user.RoleAuthor), notification.PriorityHigh
	case notification.EventVersionPublished:
		return nil, notification.PriorityHigh
	case notification.EventVersionArchived:
		return group(user.RoleAdmin), notification.PriorityMedium
	case notification.EventLockForceReleased:
		return group(user.RoleAuthor), notification.PriorityCritical
	}
	return nil, notification.PriorityLow
}

// Dispatch consumes a transition intent asynchronously.
func (s *Service) Dispatch(ctx context.Context, intent *notification.Intent) {
	go func() {
		if err := s.DispatchSync(context.Background(), intent); err != nil {
			s.logger.Error().Err(err).
				Str("event", string(intent.Event)).
				Str("version_id", intent.VersionID.String()).
				Msg("notification dispatch failed")
		}
	}()
}

// DispatchSync resolves routing for the intent, persists one notification
// per matching route, and pushes each over SSE.
func (s *Service) DispatchSync(ctx context.Context, intent *notification.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	rules, err := s.repo.ListRules(ctx, intent.Event)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", string(intent.Event)).Msg("failed to load routing rules, using defaults")
		rules = nil
	}

	title, body := renderMessage(intent)

	matched := 0
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		ok, err := evaluateRouting(rule.Expression, intent)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("rule_id", rule.RuleID.String()).
				Str("expression", rule.Expression).
				Msg("routing expression failed, skipping rule")
			continue
		}
		if !ok {
			continue
		}
		matched++
		group := rule.TargetGroup
		var target *string
		if group != "" {
			target = &group
		}
		if err := s.deliver(ctx, intent, rule.Priority, target, title, body, payload); err != nil {
			s.logger.Warn().Err(err).
				Str("rule_id", rule.RuleID.String()).
				Msg("rule delivery failed")
		}
	}

	if matched == 0 {
		target, priority := defaultRoute(intent.Event)
		return s.deliver(ctx, intent, priority, target, title, body, payload)
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, intent *notification.Intent, priority notification.Priority, targetGroup *string, title, body string, payload json.RawMessage) error {
	n := notification.NewNotification(
		intent.Event,
		intent.DocumentID,
		intent.VersionID,
		notification.ChannelSSE,
		priority,
		title,
		body,
		payload,
	)
	n.SetTarget(nil, targetGroup)
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return s.send(ctx, n)
}

// send pushes one persisted notification over SSE and records the outcome.
func (s *Service) send(ctx context.Context, n *notification.Notification) error {
	if n.IsExpired() {
		_ = n.MarkExpired()
		if err := s.repo.Update(ctx, n); err != nil {
			s.logger.Warn().
				Str("notification_id", n.NotificationID.String()).
				Err(err).
				Msg("failed to persist expired status")
		}
		return notification.ErrExpired
	}

	if err := n.MarkSent(); err != nil {
		return fmt.Errorf("failed to mark notification as sent: %w", err)
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return fmt.Errorf("failed to persist sent status: %w", err)
	}

	msg := notification.NewSSEMessage(string(n.Event), n.Payload)
	switch {
	case n.TargetUserID != nil:
		s.sseHub.BroadcastToUser(*n.TargetUserID, msg)
	case n.TargetGroup != nil:
		s.sseHub.BroadcastToGroup(*n.TargetGroup, msg)
	default:
		s.sseHub.BroadcastToAll(msg)
	}

	if err := n.MarkDelivered(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error().
			Str("notification_id", n.NotificationID.String()).
			Err(err).
			Msg("failed to persist delivered status")
		return err
	}

	s.logger.Debug().
		Str("notification_id", n.NotificationID.String()).
		Str("event", string(n.Event)).
		Msg("notification delivered")
	return nil
}

// SendNotification sends one stored notification by id.
func (s *Service) SendNotification(ctx context.Context, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if n == nil {
		return fmt.Errorf("notification not found: %s", notificationID)
	}
	return s.send(ctx, n)
}

// ProcessPending sends notifications still waiting for delivery. Run on a
// background interval.
func (s *Service) ProcessPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.repo.ListPendingNotifications(ctx, limit)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, n := range pending {
		if err := s.send(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Str("notification_id", n.NotificationID.String()).
				Msg("pending notification send failed")
			continue
		}
		sent++
	}
	return sent, nil
}

// ProcessRetryable resets failed notifications with retry budget left and
// resends them.
func (s *Service) ProcessRetryable(ctx context.Context, limit int) (int, error) {
	retryable, err := s.repo.ListRetryableNotifications(ctx, limit)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, n := range retryable {
		if err := n.ResetForRetry(); err != nil {
			continue
		}
		if err := s.repo.Update(ctx, n); err != nil {
			continue
		}
		if err := s.send(ctx, n); err != nil {
			continue
		}
		sent++
	}
	return sent, nil
}

// ExpireNotifications marks lapsed notifications expired.
func (s *Service) ExpireNotifications(ctx context.Context) (int64, error) {
	return s.repo.ExpireNotifications(ctx)
}

// List queries stored notifications.
func (s *Service) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// evaluateRouting decides whether a routing expression matches an intent.
// Empty expressions always match. Expressions see the flat parameters
// event, change_type, department and actor, plus any intent extras.
func evaluateRouting(expression string, intent *notification.Intent) (bool, error) {
	cond := strings.TrimSpace(expression)
	if cond == "" {
		return true, nil
	}
	switch strings.ToLower(cond) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	params := map[string]interface{}{
		"event":       string(intent.Event),
		"change_type": intent.ChangeType,
		"department":  intent.Department,
		"actor":       intent.Actor,
	}
	for k, v := range intent.Extra {
		params[k] = v
	}

	expr, err := govaluate.NewEvaluableExpression(cond)
	if err != nil {
		return false, err
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("routing expression did not evaluate to boolean")
	}
	return b, nil
}

func renderMessage(intent *notification.Intent) (title, body string) {
	doc := intent.DocumentNumber
	if doc == "" {
		doc = intent.DocumentID.String()
	}
	switch intent.Event {
	case notification.EventVersionSubmitted:
		return fmt.Sprintf("%s %s submitted for review", doc, intent.VersionString),
			fmt.Sprintf("%s submitted %q %s for review.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventVersionReviewApproved:
		return fmt.Sprintf("%s %s passed review", doc, intent.VersionString),
			fmt.Sprintf("%s reviewed %q %s; pending approval.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventVersionApproved:
		return fmt.Sprintf("%s %s approved", doc, intent.VersionString),
			fmt.Sprintf("%s approved %q %s; ready to publish.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventVersionRejected:
		return fmt.Sprintf("%s %s rejected", doc, intent.VersionString),
			fmt.Sprintf("%s rejected %q %s; returned to draft.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventVersionPublished:
		return fmt.Sprintf("%s %s is now effective", doc, intent.VersionString),
			fmt.Sprintf("%s published %q %s.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventVersionArchived:
		return fmt.Sprintf("%s %s archived", doc, intent.VersionString),
			fmt.Sprintf("%s archived %q %s.", intent.Actor, intent.DocumentTitle, intent.VersionString)
	case notification.EventLockForceReleased:
		return fmt.Sprintf("Edit lock released on %s %s", doc, intent.VersionString),
			fmt.Sprintf("An administrator released the edit lock on %q %s.", intent.DocumentTitle, intent.VersionString)
	}
	return string(intent.Event), fmt.Sprintf("%s on %q %s by %s.", intent.Event, intent.DocumentTitle, intent.VersionString, intent.Actor)
}
