package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/notification"
)

const notificationColumns = `id, notification_id, event, document_id, version_id, channel, priority, title, body, payload, status, target_user_id, target_group, retry_count, max_retries, last_error, expires_at, created_at, sent_at, delivered_at, failed_at`

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
		(notification_id, event, document_id, version_id, channel, priority, title, body, payload, status, target_user_id, target_group, retry_count, max_retries, last_error, expires_at, created_at, sent_at, delivered_at, failed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, n.NotificationID, n.Event, n.DocumentID, n.VersionID, n.Channel, n.Priority, n.Title, n.Body, n.Payload, n.Status, n.TargetUserID, n.TargetGroup, n.RetryCount, n.MaxRetries, n.LastError, n.ExpiresAt, n.CreatedAt, n.SentAt, n.DeliveredAt, n.FailedAt)
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*notification.Notification, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE notification_id=$1`, notificationID)
	return scanNotification(row)
}

func (r *NotificationRepository) GetByVersionID(ctx context.Context, versionID uuid.UUID) ([]*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE version_id=$1 ORDER BY created_at DESC
	`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications`
	args := []interface{}{}
	idx := 1
	if filter.Event != nil {
		query += " WHERE event=$" + itoa(idx)
		args = append(args, *filter.Event)
		idx++
	}
	if filter.DocumentID != nil {
		query += addWhere(query) + " document_id=$" + itoa(idx)
		args = append(args, *filter.DocumentID)
		idx++
	}
	if filter.VersionID != nil {
		query += addWhere(query) + " version_id=$" + itoa(idx)
		args = append(args, *filter.VersionID)
		idx++
	}
	if filter.Channel != nil {
		query += addWhere(query) + " channel=$" + itoa(idx)
		args = append(args, *filter.Channel)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.Priority != nil {
		query += addWhere(query) + " priority=$" + itoa(idx)
		args = append(args, *filter.Priority)
		idx++
	}
	if filter.TargetUserID != nil {
		query += addWhere(query) + " target_user_id=$" + itoa(idx)
		args = append(args, *filter.TargetUserID)
		idx++
	}
	if filter.TargetGroup != nil {
		query += addWhere(query) + " target_group=$" + itoa(idx)
		args = append(args, *filter.TargetGroup)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status=$1, retry_count=$2, last_error=$3, expires_at=$4, sent_at=$5, delivered_at=$6, failed_at=$7
		WHERE notification_id=$8
	`, n.Status, n.RetryCount, n.LastError, n.ExpiresAt, n.SentAt, n.DeliveredAt, n.FailedAt, n.NotificationID)
	return err
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, notificationID uuid.UUID, status notification.Status) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET status=$1 WHERE notification_id=$2`, status, notificationID)
	return err
}

func (r *NotificationRepository) ListRules(ctx context.Context, event notification.EventType) ([]*notification.RoutingRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_id, name, event, expression, target_group, priority, enabled, created_at, updated_at
		FROM notification_rules WHERE event=$1 ORDER BY created_at ASC
	`, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []*notification.RoutingRule
	for rows.Next() {
		var rule notification.RoutingRule
		if err := rows.Scan(&rule.ID, &rule.RuleID, &rule.Name, &rule.Event, &rule.Expression, &rule.TargetGroup, &rule.Priority, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (r *NotificationRepository) ListPendingNotifications(ctx context.Context, limit int) ([]*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE status=$1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at ASC LIMIT $3
	`, notification.StatusPending, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationRepository) ListRetryableNotifications(ctx context.Context, limit int) ([]*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE status=$1 AND retry_count < max_retries AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY failed_at ASC LIMIT $3
	`, notification.StatusFailed, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *NotificationRepository) ExpireNotifications(ctx context.Context) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE notifications SET status=$1
		WHERE status IN ($2, $3) AND expires_at IS NOT NULL AND expires_at < $4
	`, notification.StatusExpired, notification.StatusPending, notification.StatusFailed, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func collectNotifications(rows pgx.Rows) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	if err := row.Scan(&n.ID, &n.NotificationID, &n.Event, &n.DocumentID, &n.VersionID, &n.Channel, &n.Priority, &n.Title, &n.Body, &n.Payload, &n.Status, &n.TargetUserID, &n.TargetGroup, &n.RetryCount, &n.MaxRetries, &n.LastError, &n.ExpiresAt, &n.CreatedAt, &n.SentAt, &n.DeliveredAt, &n.FailedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
