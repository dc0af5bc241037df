package editlock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	"github.com/docvault/docvault/internal/domain/docerr"
	domain "github.com/docvault/docvault/internal/domain/editlock"
	"github.com/docvault/docvault/internal/domain/notification"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
)

// Dispatcher consumes notification intents emitted by lock operations.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent *notification.Intent)
}

// Service grants, refreshes, and reclaims the single exclusive edit lock a
// draft version may carry.
type Service struct {
	repo        domain.Repository
	versionRepo version.Repository
	userRepo    domainUser.Repository
	auditSvc    *appAudit.Service
	dispatcher  Dispatcher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates an edit lock service.
func NewService(
	repo domain.Repository,
	versionRepo version.Repository,
	userRepo domainUser.Repository,
	auditSvc *appAudit.Service,
	dispatcher Dispatcher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		versionRepo: versionRepo,
		userRepo:    userRepo,
		auditSvc:    auditSvc,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("service", "editlock").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AcquireInput defines lock acquisition input.
type AcquireInput struct {
	VersionID      uuid.UUID
	User           *domainUser.User
	TimeoutMinutes int
	SessionID      *string
	IPAddress      *string
	UserAgent      *string
}

// Acquire claims the version's edit lock. Re-acquiring a live lock the
// caller already owns refreshes it. An expired foreign lock is reclaimed in
// place. A live foreign lock is a conflict naming the holder and expiry.
func (s *Service) Acquire(ctx context.Context, in AcquireInput) (*domain.EditLock, error) {
	v, err := s.versionRepo.GetByID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", in.VersionID)
	}
	if !v.IsEditable() {
		return nil, docerr.InvalidStateTransition(string(v.Status), "version is not editable in status %s", v.Status)
	}
	if in.User.Role != domainUser.RoleAuthor && !in.User.IsAdmin() {
		return nil, docerr.PermissionDenied("only authors may edit content")
	}

	now := s.now()
	timeout := domain.ClampTimeout(in.TimeoutMinutes)

	existing, err := s.repo.GetByVersionID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsExpired(now) {
			if existing.UserID == in.User.UserID {
				existing.Refresh(now, timeout)
				if err := s.repo.Update(ctx, existing); err != nil {
					return nil, err
				}
				return existing, nil
			}
			return nil, s.conflict(ctx, existing)
		}
		// Lapsed lease; reclaim it.
		if err := s.repo.DeleteByVersionID(ctx, in.VersionID); err != nil {
			return nil, err
		}
		s.auditSvc.Log(ctx, &audit.AuditEntry{
			EntityType: audit.EntityTypeLock,
			EntityID:   in.VersionID.String(),
			Action:     audit.ActionLockExpire,
			Actor:      in.User.Username,
			Reason:     "expired lock reclaimed on acquire",
		})
	}

	token, err := domain.GenerateToken()
	if err != nil {
		return nil, err
	}
	lock := &domain.EditLock{
		VersionID:     in.VersionID,
		UserID:        in.User.UserID,
		LockToken:     token,
		AcquiredAt:    now,
		ExpiresAt:     now.Add(timeout),
		LastHeartbeat: now,
		SessionID:     in.SessionID,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
	}
	if err := s.repo.Create(ctx, lock); err != nil {
		if isUniqueViolation(err) {
			// Lost the insert race; re-read to resolve expired-vs-live.
			current, rerr := s.repo.GetByVersionID(ctx, in.VersionID)
			if rerr != nil {
				return nil, rerr
			}
			if current != nil && !current.IsExpired(s.now()) {
				if current.UserID == in.User.UserID {
					return current, nil
				}
				return nil, s.conflict(ctx, current)
			}
		}
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLock,
		EntityID:   in.VersionID.String(),
		Action:     audit.ActionLockAcquire,
		Actor:      in.User.Username,
		ActorRoles: []string{string(in.User.Role)},
	})

	s.logger.Info().
		Str("version_id", in.VersionID.String()).
		Str("user_id", in.User.UserID.String()).
		Time("expires_at", lock.ExpiresAt).
		Msg("edit lock acquired")
	return lock, nil
}

// Heartbeat extends a held lock's lease.
func (s *Service) Heartbeat(ctx context.Context, versionID uuid.UUID, token string, u *domainUser.User, extendMinutes int) (*domain.EditLock, error) {
	lock, err := s.repo.GetByVersionID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if lock == nil || lock.LockToken != token {
		return nil, docerr.NotFound("no lock held for version %s", versionID)
	}
	if lock.UserID != u.UserID {
		return nil, docerr.PermissionDenied("lock is held by another user")
	}
	now := s.now()
	if lock.IsExpired(now) {
		return nil, docerr.LockExpired("lock lease lapsed at %s", lock.ExpiresAt.Format(time.RFC3339))
	}
	lock.Refresh(now, domain.ClampTimeout(extendMinutes))
	if err := s.repo.Update(ctx, lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// Release drops the lock. Idempotent: releasing an absent lock is a no-op.
// Admins may force-release any user's lock without the token.
func (s *Service) Release(ctx context.Context, versionID uuid.UUID, token string, u *domainUser.User) error {
	lock, err := s.repo.GetByVersionID(ctx, versionID)
	if err != nil {
		return err
	}
	if lock == nil {
		return nil
	}

	forced := false
	switch {
	case lock.UserID == u.UserID && lock.LockToken == token:
	case u.IsAdmin():
		forced = lock.UserID != u.UserID
	default:
		return docerr.PermissionDenied("lock is held by another user")
	}

	if err := s.repo.DeleteByVersionID(ctx, versionID); err != nil {
		return err
	}

	action := audit.ActionLockRelease
	if forced {
		action = audit.ActionLockForceRelease
	}
	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLock,
		EntityID:   versionID.String(),
		Action:     action,
		Actor:      u.Username,
		ActorRoles: []string{string(u.Role)},
	})
	if forced {
		s.logger.Warn().
			Str("version_id", versionID.String()).
			Str("holder_id", lock.UserID.String()).
			Str("admin", u.Username).
			Msg("edit lock force released")
		if s.dispatcher != nil {
			v, err := s.versionRepo.GetByID(ctx, versionID)
			if err == nil && v != nil {
				holder := s.ownerUsername(ctx, lock.UserID)
				s.dispatcher.Dispatch(ctx, &notification.Intent{
					Event:         notification.EventLockForceReleased,
					DocumentID:    v.DocumentID,
					VersionID:     v.VersionID,
					VersionString: v.VersionString,
					Actor:         u.Username,
					Extra:         map[string]interface{}{"holder": holder},
					OccurredAt:    s.now(),
				})
			}
		}
	}
	return nil
}

// OwnerUsername resolves the lock holder's username for conflict reporting.
func (s *Service) ownerUsername(ctx context.Context, userID uuid.UUID) string {
	holder, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || holder == nil {
		return userID.String()
	}
	return holder.Username
}

func (s *Service) conflict(ctx context.Context, lock *domain.EditLock) error {
	owner := s.ownerUsername(ctx, lock.UserID)
	return docerr.LockConflict(owner, lock.ExpiresAt, "version is locked by %s until %s", owner, lock.ExpiresAt.Format(time.RFC3339))
}

// LockStatus describes the lock state of a version for a querying user.
type LockStatus struct {
	Locked      bool       `json:"locked"`
	Owner       *string    `json:"owner,omitempty"`
	OwnedBySelf bool       `json:"ownedBySelf"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CanAcquire  bool       `json:"canAcquire"`
}

// Status reports whether the version is locked, by whom, until when, and
// whether the querying user could take the lock.
func (s *Service) Status(ctx context.Context, versionID uuid.UUID, u *domainUser.User) (*LockStatus, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", versionID)
	}

	editable := v.IsEditable() && (u.Role == domainUser.RoleAuthor || u.IsAdmin())
	lock, err := s.repo.GetByVersionID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if lock == nil || lock.IsExpired(now) {
		return &LockStatus{Locked: false, CanAcquire: editable}, nil
	}

	owner := s.ownerUsername(ctx, lock.UserID)
	self := lock.UserID == u.UserID
	return &LockStatus{
		Locked:      true,
		Owner:       &owner,
		OwnedBySelf: self,
		ExpiresAt:   &lock.ExpiresAt,
		CanAcquire:  editable && self,
	}, nil
}

// ProcessExpiredLocks deletes lapsed lock rows. Correctness never depends on
// this; it is storage hygiene run on a background interval.
func (s *Service) ProcessExpiredLocks(ctx context.Context, limit int) (int, error) {
	expired, err := s.repo.ListExpired(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}
	reclaimed := 0
	for _, lock := range expired {
		if err := s.repo.DeleteByVersionID(ctx, lock.VersionID); err != nil {
			s.logger.Error().Err(err).
				Str("version_id", lock.VersionID.String()).
				Msg("failed to delete expired lock")
			continue
		}
		reclaimed++
		s.auditSvc.Log(ctx, &audit.AuditEntry{
			EntityType: audit.EntityTypeLock,
			EntityID:   lock.VersionID.String(),
			Action:     audit.ActionLockExpire,
			Actor:      "system",
			Reason:     "expired lock swept",
		})
	}
	if reclaimed > 0 {
		s.logger.Info().Int("count", reclaimed).Msg("expired edit locks reclaimed")
	}
	return reclaimed, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
