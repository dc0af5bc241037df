package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/editlock"
)

// EditLockRepository implements editlock.Repository. The edit_locks table
// carries a unique constraint on version_id, so a concurrent insert race
// surfaces as a unique violation for exactly one loser.
type EditLockRepository struct {
	pool *pgxpool.Pool
}

func NewEditLockRepository(pool *pgxpool.Pool) *EditLockRepository {
	return &EditLockRepository{pool: pool}
}

func (r *EditLockRepository) Create(ctx context.Context, lock *editlock.EditLock) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO edit_locks
		(version_id, user_id, lock_token, acquired_at, expires_at, last_heartbeat, session_id, ip_address, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, lock.VersionID, lock.UserID, lock.LockToken, lock.AcquiredAt, lock.ExpiresAt, lock.LastHeartbeat, lock.SessionID, lock.IPAddress, lock.UserAgent)
	return err
}

func (r *EditLockRepository) GetByVersionID(ctx context.Context, versionID uuid.UUID) (*editlock.EditLock, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, version_id, user_id, lock_token, acquired_at, expires_at, last_heartbeat, session_id, ip_address::text, user_agent
		FROM edit_locks WHERE version_id=$1
	`, versionID)
	return scanEditLock(row)
}

func (r *EditLockRepository) Update(ctx context.Context, lock *editlock.EditLock) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE edit_locks
		SET user_id=$1, lock_token=$2, acquired_at=$3, expires_at=$4, last_heartbeat=$5
		WHERE version_id=$6
	`, lock.UserID, lock.LockToken, lock.AcquiredAt, lock.ExpiresAt, lock.LastHeartbeat, lock.VersionID)
	return err
}

func (r *EditLockRepository) DeleteByVersionID(ctx context.Context, versionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM edit_locks WHERE version_id=$1`, versionID)
	return err
}

func (r *EditLockRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*editlock.EditLock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, version_id, user_id, lock_token, acquired_at, expires_at, last_heartbeat, session_id, ip_address::text, user_agent
		FROM edit_locks WHERE expires_at < $1 ORDER BY expires_at ASC LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []*editlock.EditLock
	for rows.Next() {
		lock, err := scanEditLock(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}
	return locks, rows.Err()
}

func scanEditLock(row pgx.Row) (*editlock.EditLock, error) {
	var lock editlock.EditLock
	if err := row.Scan(&lock.ID, &lock.VersionID, &lock.UserID, &lock.LockToken, &lock.AcquiredAt, &lock.ExpiresAt, &lock.LastHeartbeat, &lock.SessionID, &lock.IPAddress, &lock.UserAgent); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &lock, nil
}
