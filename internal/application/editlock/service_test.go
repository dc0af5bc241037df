package editlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	auditmocks "github.com/docvault/docvault/internal/domain/audit/mocks"
	"github.com/docvault/docvault/internal/domain/docerr"
	domain "github.com/docvault/docvault/internal/domain/editlock"
	lockmocks "github.com/docvault/docvault/internal/domain/editlock/mocks"
	"github.com/docvault/docvault/internal/domain/notification"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	usermocks "github.com/docvault/docvault/internal/domain/user/mocks"
	"github.com/docvault/docvault/internal/domain/version"
	vmocks "github.com/docvault/docvault/internal/domain/version/mocks"
)

type captureDispatcher struct {
	mu      sync.Mutex
	intents []*notification.Intent
}

func (d *captureDispatcher) Dispatch(_ context.Context, intent *notification.Intent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intents = append(d.intents, intent)
}

type lockEnv struct {
	repo        *lockmocks.MockRepository
	versionRepo *vmocks.MockRepository
	userRepo    *usermocks.MockRepository
	dispatcher  *captureDispatcher
	svc         *Service
}

var fixedNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func newLockEnv(t *testing.T) *lockEnv {
	auditRepo := &auditmocks.MockRepository{}
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	auditSvc := appAudit.NewService(auditRepo, zerolog.Nop(), nil)

	env := &lockEnv{
		repo:        &lockmocks.MockRepository{},
		versionRepo: &vmocks.MockRepository{},
		userRepo:    &usermocks.MockRepository{},
		dispatcher:  &captureDispatcher{},
	}
	env.svc = NewService(env.repo, env.versionRepo, env.userRepo, auditSvc, env.dispatcher, zerolog.Nop())
	env.svc.now = func() time.Time { return fixedNow }
	return env
}

func lockUser(role domainUser.Role) *domainUser.User {
	return &domainUser.User{
		UserID:   uuid.New(),
		Username: "u-" + uuid.NewString()[:8],
		Role:     role,
		Status:   domainUser.StatusActive,
	}
}

func editableVersion() *version.DocumentVersion {
	return &version.DocumentVersion{
		VersionID:  uuid.New(),
		DocumentID: uuid.New(),
		Status:     version.StatusDraft,
	}
}

func heldLock(versionID uuid.UUID, u *domainUser.User, token string, expiresAt time.Time) *domain.EditLock {
	return &domain.EditLock{
		VersionID:     versionID,
		UserID:        u.UserID,
		LockToken:     token,
		AcquiredAt:    fixedNow.Add(-5 * time.Minute),
		ExpiresAt:     expiresAt,
		LastHeartbeat: fixedNow.Add(-5 * time.Minute),
	}
}

func TestAcquire(t *testing.T) {
	t.Run("fresh acquire creates a lock with the clamped lease", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		v := editableVersion()

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(nil, nil)
		env.repo.On("Create", mock.Anything, mock.AnythingOfType("*editlock.EditLock")).Return(nil)

		lock, err := env.svc.Acquire(context.Background(), AcquireInput{
			VersionID:      v.VersionID,
			User:           author,
			TimeoutMinutes: 200,
		})

		require.NoError(t, err)
		assert.Equal(t, author.UserID, lock.UserID)
		assert.NotEmpty(t, lock.LockToken)
		assert.Equal(t, fixedNow.Add(domain.MaxTimeoutMinutes*time.Minute), lock.ExpiresAt)
	})

	t.Run("reacquiring own live lock refreshes it", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		existing := heldLock(v.VersionID, author, "tok", fixedNow.Add(2*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(existing, nil)
		env.repo.On("Update", mock.Anything, existing).Return(nil)

		lock, err := env.svc.Acquire(context.Background(), AcquireInput{
			VersionID: v.VersionID,
			User:      author,
		})

		require.NoError(t, err)
		assert.Equal(t, "tok", lock.LockToken)
		assert.Equal(t, fixedNow.Add(domain.DefaultTimeoutMinutes*time.Minute), lock.ExpiresAt)
		env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("live foreign lock is a conflict naming the holder", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		holder := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		existing := heldLock(v.VersionID, holder, "theirs", fixedNow.Add(10*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(existing, nil)
		env.userRepo.On("GetByID", mock.Anything, holder.UserID).Return(holder, nil)

		_, err := env.svc.Acquire(context.Background(), AcquireInput{
			VersionID: v.VersionID,
			User:      author,
		})

		require.Equal(t, docerr.KindLockConflict, docerr.KindOf(err))
		de := docerr.AsError(err)
		assert.Equal(t, holder.Username, de.LockOwner)
		require.NotNil(t, de.LockExpiresAt)
		assert.Equal(t, existing.ExpiresAt, *de.LockExpiresAt)
	})

	t.Run("expired foreign lock is reclaimed in place", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		holder := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		existing := heldLock(v.VersionID, holder, "lapsed", fixedNow.Add(-1*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(existing, nil)
		env.repo.On("DeleteByVersionID", mock.Anything, v.VersionID).Return(nil)
		env.repo.On("Create", mock.Anything, mock.AnythingOfType("*editlock.EditLock")).Return(nil)

		lock, err := env.svc.Acquire(context.Background(), AcquireInput{
			VersionID: v.VersionID,
			User:      author,
		})

		require.NoError(t, err)
		assert.Equal(t, author.UserID, lock.UserID)
		env.repo.AssertCalled(t, "DeleteByVersionID", mock.Anything, v.VersionID)
	})

	t.Run("insert race resolves against the winner", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		winner := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		current := heldLock(v.VersionID, winner, "won", fixedNow.Add(20*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(nil, nil).Once()
		env.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New(`duplicate key value violates unique constraint "edit_locks_version_id_key"`))
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(current, nil)
		env.userRepo.On("GetByID", mock.Anything, winner.UserID).Return(winner, nil)

		_, err := env.svc.Acquire(context.Background(), AcquireInput{
			VersionID: v.VersionID,
			User:      author,
		})
		assert.Equal(t, docerr.KindLockConflict, docerr.KindOf(err))
	})

	t.Run("non-editable version refuses a lock", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		v.Status = version.StatusUnderReview

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)

		_, err := env.svc.Acquire(context.Background(), AcquireInput{VersionID: v.VersionID, User: author})
		assert.Equal(t, docerr.KindInvalidStateTransition, docerr.KindOf(err))
	})

	t.Run("reviewers may not lock", func(t *testing.T) {
		env := newLockEnv(t)
		reviewer := lockUser(domainUser.RoleReviewer)
		v := editableVersion()

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)

		_, err := env.svc.Acquire(context.Background(), AcquireInput{VersionID: v.VersionID, User: reviewer})
		assert.Equal(t, docerr.KindPermissionDenied, docerr.KindOf(err))
	})
}

func TestHeartbeat(t *testing.T) {
	t.Run("extends a live lease", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()
		lock := heldLock(versionID, author, "tok", fixedNow.Add(2*time.Minute))

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(lock, nil)
		env.repo.On("Update", mock.Anything, lock).Return(nil)

		got, err := env.svc.Heartbeat(context.Background(), versionID, "tok", author, 0)
		require.NoError(t, err)
		assert.Equal(t, fixedNow.Add(domain.DefaultTimeoutMinutes*time.Minute), got.ExpiresAt)
		assert.Equal(t, fixedNow, got.LastHeartbeat)
	})

	t.Run("unknown token reads as no lock", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()
		lock := heldLock(versionID, author, "tok", fixedNow.Add(2*time.Minute))

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(lock, nil)

		_, err := env.svc.Heartbeat(context.Background(), versionID, "other", author, 0)
		assert.Equal(t, docerr.KindNotFound, docerr.KindOf(err))
	})

	t.Run("lapsed lease cannot be extended", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()
		lock := heldLock(versionID, author, "tok", fixedNow.Add(-1*time.Second))

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(lock, nil)

		_, err := env.svc.Heartbeat(context.Background(), versionID, "tok", author, 0)
		assert.Equal(t, docerr.KindLockExpired, docerr.KindOf(err))
		env.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRelease(t *testing.T) {
	t.Run("owner releases with the token", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()
		lock := heldLock(versionID, author, "tok", fixedNow.Add(10*time.Minute))

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(lock, nil)
		env.repo.On("DeleteByVersionID", mock.Anything, versionID).Return(nil)

		require.NoError(t, env.svc.Release(context.Background(), versionID, "tok", author))
		assert.Empty(t, env.dispatcher.intents)
	})

	t.Run("releasing an absent lock is a no-op", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(nil, nil)

		require.NoError(t, env.svc.Release(context.Background(), versionID, "tok", author))
		env.repo.AssertNotCalled(t, "DeleteByVersionID", mock.Anything, mock.Anything)
	})

	t.Run("non-owner without admin is denied", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		other := lockUser(domainUser.RoleAuthor)
		versionID := uuid.New()
		lock := heldLock(versionID, author, "tok", fixedNow.Add(10*time.Minute))

		env.repo.On("GetByVersionID", mock.Anything, versionID).Return(lock, nil)

		err := env.svc.Release(context.Background(), versionID, "tok", other)
		assert.Equal(t, docerr.KindPermissionDenied, docerr.KindOf(err))
	})

	t.Run("admin force-release notifies the displaced holder", func(t *testing.T) {
		env := newLockEnv(t)
		admin := lockUser(domainUser.RoleAdmin)
		holder := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		lock := heldLock(v.VersionID, holder, "tok", fixedNow.Add(10*time.Minute))

		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(lock, nil)
		env.repo.On("DeleteByVersionID", mock.Anything, v.VersionID).Return(nil)
		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.userRepo.On("GetByID", mock.Anything, holder.UserID).Return(holder, nil)

		require.NoError(t, env.svc.Release(context.Background(), v.VersionID, "", admin))
		require.Len(t, env.dispatcher.intents, 1)
		intent := env.dispatcher.intents[0]
		assert.Equal(t, notification.EventLockForceReleased, intent.Event)
		assert.Equal(t, holder.Username, intent.Extra["holder"])
		assert.Equal(t, admin.Username, intent.Actor)
	})
}

func TestStatus(t *testing.T) {
	t.Run("unlocked draft is acquirable by an author", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		v := editableVersion()

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(nil, nil)

		st, err := env.svc.Status(context.Background(), v.VersionID, author)
		require.NoError(t, err)
		assert.False(t, st.Locked)
		assert.True(t, st.CanAcquire)
	})

	t.Run("expired lock reads as unlocked", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		holder := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		lock := heldLock(v.VersionID, holder, "tok", fixedNow.Add(-1*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(lock, nil)

		st, err := env.svc.Status(context.Background(), v.VersionID, author)
		require.NoError(t, err)
		assert.False(t, st.Locked)
		assert.True(t, st.CanAcquire)
	})

	t.Run("foreign live lock names the holder", func(t *testing.T) {
		env := newLockEnv(t)
		author := lockUser(domainUser.RoleAuthor)
		holder := lockUser(domainUser.RoleAuthor)
		v := editableVersion()
		lock := heldLock(v.VersionID, holder, "tok", fixedNow.Add(10*time.Minute))

		env.versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		env.repo.On("GetByVersionID", mock.Anything, v.VersionID).Return(lock, nil)
		env.userRepo.On("GetByID", mock.Anything, holder.UserID).Return(holder, nil)

		st, err := env.svc.Status(context.Background(), v.VersionID, author)
		require.NoError(t, err)
		assert.True(t, st.Locked)
		require.NotNil(t, st.Owner)
		assert.Equal(t, holder.Username, *st.Owner)
		assert.False(t, st.OwnedBySelf)
		assert.False(t, st.CanAcquire)
	})
}

func TestProcessExpiredLocks(t *testing.T) {
	env := newLockEnv(t)
	a, b := uuid.New(), uuid.New()
	expired := []*domain.EditLock{
		{VersionID: a, UserID: uuid.New(), ExpiresAt: fixedNow.Add(-2 * time.Hour)},
		{VersionID: b, UserID: uuid.New(), ExpiresAt: fixedNow.Add(-1 * time.Hour)},
	}

	env.repo.On("ListExpired", mock.Anything, fixedNow, 100).Return(expired, nil)
	env.repo.On("DeleteByVersionID", mock.Anything, a).Return(nil)
	env.repo.On("DeleteByVersionID", mock.Anything, b).Return(errors.New("connection reset"))

	reclaimed, err := env.svc.ProcessExpiredLocks(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)
}
