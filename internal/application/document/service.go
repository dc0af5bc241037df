package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	"github.com/docvault/docvault/internal/domain/docerr"
	domain "github.com/docvault/docvault/internal/domain/document"
	domainUser "github.com/docvault/docvault/internal/domain/user"
)

// Service handles the document aggregate: the container a version lineage
// hangs off. Versions themselves are managed by the lifecycle service.
type Service struct {
	repo     domain.Repository
	auditSvc *appAudit.Service
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a document service.
func NewService(repo domain.Repository, auditSvc *appAudit.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		auditSvc: auditSvc,
		logger:   logger.With().Str("service", "document").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput defines document creation input.
type CreateInput struct {
	Title      string
	Prefix     string
	Department string
	Owner      *domainUser.User
}

// Create registers a new document and assigns its controlled number. The
// number sequence restarts daily per prefix/department.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Document, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Owner == nil {
		return nil, docerr.PermissionDenied("owner is required")
	}
	if input.Owner.Role != domainUser.RoleAuthor && !input.Owner.IsAdmin() {
		return nil, docerr.PermissionDenied("only authors may create documents")
	}

	now := s.now()
	prefix := domain.NumberPrefix(input.Prefix, input.Department, now)
	seq, err := s.repo.CountNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	number := domain.BuildNumber(input.Prefix, input.Department, now, seq+1)

	doc := &domain.Document{
		DocumentID:     uuid.New(),
		DocumentNumber: number,
		Title:          title,
		Department:     strings.TrimSpace(input.Department),
		Status:         domain.StatusActive,
		OwnerUserID:    input.Owner.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeDocument,
		EntityID:   doc.DocumentID.String(),
		Action:     audit.ActionCreate,
		Actor:      input.Owner.Username,
		ActorRoles: []string{string(input.Owner.Role)},
		NewValues:  map[string]interface{}{"documentNumber": doc.DocumentNumber, "title": doc.Title},
	})

	s.logger.Info().
		Str("document_id", doc.DocumentID.String()).
		Str("document_number", doc.DocumentNumber).
		Msg("document created")
	return doc, nil
}

func (s *Service) Get(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, docerr.NotFound("document not found: %s", documentID)
	}
	return doc, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Document, error) {
	doc, err := s.repo.GetByNumber(ctx, domain.NormalizeNumber(number))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, docerr.NotFound("document not found: %s", number)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.Document, error) {
	return s.repo.List(ctx, filter, limit, offset)
}
