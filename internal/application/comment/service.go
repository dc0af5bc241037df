package comment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	domain "github.com/docvault/docvault/internal/domain/comment"
	"github.com/docvault/docvault/internal/domain/docerr"
	"github.com/docvault/docvault/internal/domain/document"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
)

// Service manages inline comments on version content. Any authenticated
// user may comment and read; editing and deleting stay with the comment's
// author, resolving additionally with the document owner.
type Service struct {
	repo        domain.Repository
	versionRepo version.Repository
	docRepo     document.Repository
	auditSvc    *appAudit.Service
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a comment service.
func NewService(repo domain.Repository, versionRepo version.Repository, docRepo document.Repository, auditSvc *appAudit.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		versionRepo: versionRepo,
		docRepo:     docRepo,
		auditSvc:    auditSvc,
		logger:      logger.With().Str("service", "comment").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput defines comment creation input.
type CreateInput struct {
	VersionID      uuid.UUID
	User           *domainUser.User
	Text           string
	SelectedText   *string
	SelectionStart *int
	SelectionEnd   *int
	TextContext    *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Comment, error) {
	if in.Text == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	v, err := s.versionRepo.GetByID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", in.VersionID)
	}

	now := s.now()
	c := &domain.Comment{
		CommentID:      uuid.New(),
		VersionID:      in.VersionID,
		UserID:         in.User.UserID,
		Text:           in.Text,
		SelectedText:   in.SelectedText,
		SelectionStart: in.SelectionStart,
		SelectionEnd:   in.SelectionEnd,
		TextContext:    in.TextContext,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeComment,
		EntityID:   c.CommentID.String(),
		Action:     audit.ActionCreate,
		Actor:      in.User.Username,
		ActorRoles: []string{string(in.User.Role)},
		Reason:     "comment added on " + v.VersionString,
	})

	s.logger.Info().
		Str("comment_id", c.CommentID.String()).
		Str("version_id", in.VersionID.String()).
		Msg("comment created")
	return c, nil
}

// List returns a version's comments, newest first. Resolved comments are
// filtered out unless asked for.
func (s *Service) List(ctx context.Context, versionID uuid.UUID, includeResolved bool) ([]*domain.Comment, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", versionID)
	}
	return s.repo.ListByVersion(ctx, versionID, includeResolved)
}

// UpdateText rewrites the comment body. Author or admin only.
func (s *Service) UpdateText(ctx context.Context, commentID uuid.UUID, u *domainUser.User, text string) (*domain.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	c, err := s.getOwned(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != u.UserID && !u.IsAdmin() {
		return nil, docerr.PermissionDenied("only the comment author or an admin may edit the text")
	}

	c.Text = text
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeComment,
		EntityID:   c.CommentID.String(),
		Action:     audit.ActionUpdate,
		Actor:      u.Username,
		ActorRoles: []string{string(u.Role)},
		Reason:     "comment text edited",
	})
	return c, nil
}

// Resolve marks a comment addressed, or reopens it. Allowed for the
// comment author, the document owner, or an admin.
func (s *Service) Resolve(ctx context.Context, commentID uuid.UUID, u *domainUser.User, resolved bool) (*domain.Comment, error) {
	c, err := s.getOwned(ctx, commentID)
	if err != nil {
		return nil, err
	}
	allowed := c.UserID == u.UserID || u.IsAdmin()
	if !allowed {
		owner, err := s.documentOwner(ctx, c.VersionID)
		if err != nil {
			return nil, err
		}
		allowed = owner == u.UserID
	}
	if !allowed {
		return nil, docerr.PermissionDenied("only the comment author, the document owner, or an admin may resolve this comment")
	}

	if resolved {
		c.Resolve(u.UserID, s.now())
	} else {
		c.Reopen(s.now())
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	reason := "comment resolved"
	if !resolved {
		reason = "comment reopened"
	}
	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeComment,
		EntityID:   c.CommentID.String(),
		Action:     audit.ActionUpdate,
		Actor:      u.Username,
		ActorRoles: []string{string(u.Role)},
		Reason:     reason,
	})
	return c, nil
}

// Delete removes a comment. Author or admin only.
func (s *Service) Delete(ctx context.Context, commentID uuid.UUID, u *domainUser.User) error {
	c, err := s.getOwned(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != u.UserID && !u.IsAdmin() {
		return docerr.PermissionDenied("only the comment author or an admin may delete this comment")
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeComment,
		EntityID:   commentID.String(),
		Action:     audit.ActionDelete,
		Actor:      u.Username,
		ActorRoles: []string{string(u.Role)},
		Reason:     "comment deleted",
	})
	return nil
}

// Get returns one comment by id.
func (s *Service) Get(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	return s.getOwned(ctx, commentID)
}

func (s *Service) getOwned(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, docerr.NotFound("comment not found: %s", commentID)
	}
	return c, nil
}

func (s *Service) documentOwner(ctx context.Context, versionID uuid.UUID) (uuid.UUID, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return uuid.Nil, err
	}
	if v == nil {
		return uuid.Nil, docerr.NotFound("version not found: %s", versionID)
	}
	doc, err := s.docRepo.GetByID(ctx, v.DocumentID)
	if err != nil {
		return uuid.Nil, err
	}
	if doc == nil {
		return uuid.Nil, docerr.NotFound("document not found: %s", v.DocumentID)
	}
	return doc.OwnerUserID, nil
}
