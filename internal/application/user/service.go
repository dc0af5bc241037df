package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	"github.com/docvault/docvault/internal/domain/docerr"
	domain "github.com/docvault/docvault/internal/domain/user"
)

// Service handles user management.
type Service struct {
	repo       domain.Repository
	auditSvc   *appAudit.Service
	bcryptCost int
	logger     zerolog.Logger
}

// NewService creates a user service. bcryptCost tunes credential hashing;
// zero means the bcrypt default.
func NewService(repo domain.Repository, auditSvc *appAudit.Service, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		auditSvc:   auditSvc,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// CreateInput defines user creation input.
type CreateInput struct {
	Username    string
	Password    string
	FullName    string
	Designation string
	Department  string
	Role        domain.Role
	Status      domain.Status
	Actor       string
}

// UpdateInput defines user update input.
type UpdateInput struct {
	FullName    *string
	Designation *string
	Department  *string
	Role        *domain.Role
	Status      *domain.Status
	Actor       string
}

func (s *Service) CreateUser(ctx context.Context, input CreateInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, err
	}
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = domain.StatusActive
	}
	if err := domain.ValidateStatus(input.Status); err != nil {
		return nil, err
	}

	hash, err := domain.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Designation:  input.Designation,
		Department:   input.Department,
		Role:         input.Role,
		Status:       input.Status,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeUser,
		EntityID:   u.UserID.String(),
		Action:     audit.ActionCreate,
		Actor:      input.Actor,
		NewValues:  map[string]interface{}{"username": u.Username, "role": u.Role},
	})

	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("user created")
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, docerr.NotFound("user not found: %s", userID)
	}

	if input.FullName != nil {
		u.FullName = *input.FullName
	}
	if input.Designation != nil {
		u.Designation = *input.Designation
	}
	if input.Department != nil {
		u.Department = *input.Department
	}
	if input.Role != nil {
		if err := domain.ValidateRole(*input.Role); err != nil {
			return nil, err
		}
		u.Role = *input.Role
	}
	if input.Status != nil {
		if err := domain.ValidateStatus(*input.Status); err != nil {
			return nil, err
		}
		u.Status = *input.Status
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeUser,
		EntityID:   u.UserID.String(),
		Action:     audit.ActionUpdate,
		Actor:      input.Actor,
		NewValues:  map[string]interface{}{"role": u.Role, "status": u.Status},
	})

	s.logger.Info().Str("user_id", u.UserID.String()).Msg("user updated")
	return u, nil
}

// ChangePassword sets a new credential after re-verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return docerr.NotFound("user not found: %s", userID)
	}
	if !domain.VerifyPassword(u.PasswordHash, currentPassword) {
		return docerr.ESignatureFailed()
	}
	if err := domain.ValidatePassword(newPassword, u.Username); err != nil {
		return err
	}
	hash, err := domain.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeUser,
		EntityID:   u.UserID.String(),
		Action:     audit.ActionUpdate,
		Actor:      u.Username,
		Reason:     "password changed",
	})
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, docerr.NotFound("user not found: %s", userID)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
