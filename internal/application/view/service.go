package view

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	"github.com/docvault/docvault/internal/domain/docerr"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
	domain "github.com/docvault/docvault/internal/domain/view"
)

// Service records and answers "has this user opened this version's content"
// facts. Decision gates in the lifecycle service consult it before letting
// reviewers and approvers act.
type Service struct {
	repo        domain.Repository
	versionRepo version.Repository
	auditSvc    *appAudit.Service
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a view service.
func NewService(repo domain.Repository, versionRepo version.Repository, auditSvc *appAudit.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		versionRepo: versionRepo,
		auditSvc:    auditSvc,
		logger:      logger.With().Str("service", "view").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RecordView upserts a view fact for (version, user). Repeat views refresh
// the timestamp; there is never more than one row per pair.
func (s *Service) RecordView(ctx context.Context, versionID uuid.UUID, u *domainUser.User) (*domain.DocumentView, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", versionID)
	}

	fact := &domain.DocumentView{
		DocumentID: v.DocumentID,
		VersionID:  versionID,
		UserID:     u.UserID,
		ViewedAt:   s.now(),
	}
	if err := s.repo.Upsert(ctx, fact); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeVersion,
		EntityID:   versionID.String(),
		Action:     audit.ActionView,
		Actor:      u.Username,
		ActorRoles: []string{string(u.Role)},
	})
	return fact, nil
}

// HasViewed reports whether the user has viewed the version at least once.
func (s *Service) HasViewed(ctx context.Context, versionID, userID uuid.UUID) (bool, error) {
	fact, err := s.repo.Get(ctx, versionID, userID)
	if err != nil {
		return false, err
	}
	return fact != nil, nil
}

// ListViewers returns every recorded view of a version.
func (s *Service) ListViewers(ctx context.Context, versionID uuid.UUID) ([]*domain.DocumentView, error) {
	return s.repo.ListByVersion(ctx, versionID)
}
