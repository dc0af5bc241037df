package version

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/domain/audit"
	"github.com/docvault/docvault/internal/domain/docerr"
	"github.com/docvault/docvault/internal/domain/document"
	"github.com/docvault/docvault/internal/domain/editlock"
	"github.com/docvault/docvault/internal/domain/notification"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	domain "github.com/docvault/docvault/internal/domain/version"
	"github.com/docvault/docvault/internal/domain/view"
)

// defaultAutosaveAuditEvery bounds audit volume for autosaves: only every
// Nth accepted autosave is recorded.
const defaultAutosaveAuditEvery = 10

// Dispatcher consumes notification intents after a transition commits.
// Dispatch is best-effort; it must never fail the transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent *notification.Intent)
}

// Service is the lifecycle facade: it composes the transition table, the
// e-signature check, the view gate, the edit lock, and the publish cascade
// into the public version operations.
type Service struct {
	repo       domain.Repository
	docRepo    document.Repository
	lockRepo   editlock.Repository
	viewRepo   view.Repository
	auditSvc   *appAudit.Service
	dispatcher Dispatcher
	logger     zerolog.Logger
	now        func() time.Time

	autosaveAuditEvery int
}

// NewService creates a version lifecycle service.
func NewService(
	repo domain.Repository,
	docRepo document.Repository,
	lockRepo editlock.Repository,
	viewRepo view.Repository,
	auditSvc *appAudit.Service,
	dispatcher Dispatcher,
	autosaveAuditEvery int,
	logger zerolog.Logger,
) *Service {
	if autosaveAuditEvery <= 0 {
		autosaveAuditEvery = defaultAutosaveAuditEvery
	}
	return &Service{
		repo:       repo,
		docRepo:    docRepo,
		lockRepo:   lockRepo,
		viewRepo:   viewRepo,
		auditSvc:   auditSvc,
		dispatcher: dispatcher,
		logger:     logger.With().Str("service", "version").Logger(),
		now:        func() time.Time { return time.Now().UTC() },

		autosaveAuditEvery: autosaveAuditEvery,
	}
}

// CreateInput defines draft creation input.
type CreateInput struct {
	DocumentID   uuid.UUID
	User         *domainUser.User
	ChangeType   domain.ChangeType
	ChangeReason string
	Content      string
}

// Create opens a new draft. The first draft of a document starts at v0.1;
// later drafts clone the current effective version and carry the semantic
// increment computed from the change type.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.DocumentVersion, error) {
	doc, err := s.docRepo.GetByID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, docerr.NotFound("document not found: %s", in.DocumentID)
	}
	isOwner := doc.OwnerUserID == in.User.UserID
	if !in.User.IsAdmin() && !(in.User.Role == domainUser.RoleAuthor && isOwner) {
		return nil, docerr.PermissionDenied("only the document owner or an admin may create versions")
	}
	if in.ChangeType == "" {
		in.ChangeType = domain.ChangeTypeMinor
	}
	if err := domain.ValidateChangeType(in.ChangeType); err != nil {
		return nil, err
	}

	now := s.now()
	v := &domain.DocumentVersion{
		VersionID:  uuid.New(),
		DocumentID: in.DocumentID,
		IsLatest:   true,
		Status:     domain.StatusDraft,
		ChangeType: in.ChangeType,
		CreatedBy:  in.User.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	latest, err := s.repo.GetLatestByDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		v.VersionNumber = 1
		v.VersionString = domain.FirstVersionString()
		v.Content = in.Content
	} else {
		if latest.Status != domain.StatusEffective {
			return nil, docerr.InvalidStateTransition(string(latest.Status),
				"a new draft requires the latest version to be effective, not %s", latest.Status)
		}
		if in.ChangeReason == "" {
			return nil, fmt.Errorf("change reason is required for a revision")
		}
		maxNum, err := s.repo.MaxVersionNumber(ctx, in.DocumentID)
		if err != nil {
			return nil, err
		}
		v.VersionNumber = maxNum + 1
		v.VersionString = domain.NextVersionString(latest.VersionString, in.ChangeType)
		v.ParentVersionID = &latest.VersionID
		v.ChangeReason = in.ChangeReason
		v.Content = latest.Content
		if in.Content != "" {
			v.Content = in.Content
		}

		latest.IsLatest = false
		latest.UpdatedAt = now
		if err := s.repo.Update(ctx, latest); err != nil {
			return nil, err
		}
	}
	v.ContentFingerprint = domain.Fingerprint(v.Content)

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeVersion,
		EntityID:   v.VersionID.String(),
		Action:     audit.ActionCreate,
		Actor:      in.User.Username,
		ActorRoles: []string{string(in.User.Role)},
		NewValues:  map[string]interface{}{"versionString": v.VersionString, "changeType": v.ChangeType},
	})

	s.logger.Info().
		Str("document_id", in.DocumentID.String()).
		Str("version_id", v.VersionID.String()).
		Str("version_string", v.VersionString).
		Msg("draft created")
	return v, nil
}

// SaveInput defines a content write.
type SaveInput struct {
	VersionID           uuid.UUID
	User                *domainUser.User
	ExpectedFingerprint string
	Content             string
	LockToken           string
	Autosave            bool
}

// SaveContent writes draft content under the edit lock and the fingerprint
// compare-and-swap. A stale fingerprint is rejected with the stored one so
// the caller can reconcile and retry.
func (s *Service) SaveContent(ctx context.Context, in SaveInput) (*domain.DocumentVersion, error) {
	v, err := s.repo.GetByID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", in.VersionID)
	}
	if !v.IsEditable() {
		return nil, docerr.InvalidStateTransition(string(v.Status), "content is frozen in status %s", v.Status)
	}

	now := s.now()
	lock, err := s.lockRepo.GetByVersionID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	switch {
	case lock == nil:
		return nil, docerr.LockExpired("no edit lock held; acquire one before saving")
	case lock.UserID != in.User.UserID:
		if lock.IsExpired(now) {
			return nil, docerr.LockExpired("previous lock lapsed; acquire one before saving")
		}
		return nil, docerr.LockConflict(lock.UserID.String(), lock.ExpiresAt,
			"version is locked by another user until %s", lock.ExpiresAt.Format(time.RFC3339))
	case lock.LockToken != in.LockToken:
		return nil, docerr.PermissionDenied("lock token mismatch")
	case lock.IsExpired(now):
		return nil, docerr.LockExpired("lock lease lapsed at %s", lock.ExpiresAt.Format(time.RFC3339))
	}

	newFingerprint := domain.Fingerprint(in.Content)
	updated, err := s.repo.UpdateContentIf(ctx, in.VersionID, in.ExpectedFingerprint, in.Content, newFingerprint, in.Autosave, now)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		current, err := s.repo.GetByID(ctx, in.VersionID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, docerr.NotFound("version not found: %s", in.VersionID)
		}
		return nil, docerr.ConcurrencyConflict(current.ContentFingerprint,
			"content changed since fingerprint %s", in.ExpectedFingerprint)
	}

	if in.Autosave {
		if updated.AutosaveCount%s.autosaveAuditEvery == 0 {
			s.auditSvc.Log(ctx, &audit.AuditEntry{
				EntityType: audit.EntityTypeVersion,
				EntityID:   in.VersionID.String(),
				Action:     audit.ActionAutosave,
				Actor:      in.User.Username,
				NewValues:  map[string]interface{}{"fingerprint": newFingerprint, "lockCounter": updated.LockCounter},
			})
		}
	} else {
		s.auditSvc.Log(ctx, &audit.AuditEntry{
			EntityType: audit.EntityTypeVersion,
			EntityID:   in.VersionID.String(),
			Action:     audit.ActionSave,
			Actor:      in.User.Username,
			NewValues:  map[string]interface{}{"fingerprint": newFingerprint, "lockCounter": updated.LockCounter},
		})
	}
	return updated, nil
}

// TransitionInput defines a workflow transition request. Password is the
// plaintext e-signature credential; it is verified and discarded.
type TransitionInput struct {
	VersionID     uuid.UUID
	User          *domainUser.User
	Password      string
	Comments      string
	EffectiveDate *time.Time
}

func (s *Service) Submit(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionSubmit, in)
}

func (s *Service) ReviewApprove(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionReviewApprove, in)
}

func (s *Service) Approve(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionApprove, in)
}

func (s *Service) Reject(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionReject, in)
}

func (s *Service) Publish(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionPublish, in)
}

func (s *Service) Archive(ctx context.Context, in TransitionInput) (*domain.DocumentVersion, error) {
	return s.transition(ctx, domain.ActionArchive, in)
}

// transition runs the shared gate sequence: e-signature, role, source
// status, view requirement; then applies the action's state change,
// signatory stamping, and side effects.
func (s *Service) transition(ctx context.Context, action domain.Action, in TransitionInput) (*domain.DocumentVersion, error) {
	v, err := s.repo.GetByID(ctx, in.VersionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", in.VersionID)
	}

	if !domainUser.VerifyPassword(in.User.PasswordHash, in.Password) {
		s.auditSvc.Log(ctx, &audit.AuditEntry{
			EntityType: audit.EntityTypeVersion,
			EntityID:   v.VersionID.String(),
			Action:     auditAction(action),
			Actor:      in.User.Username,
			Reason:     "e-signature verification failed",
		})
		return nil, docerr.ESignatureFailed()
	}

	rule, ok := domain.RuleFor(action)
	if !ok {
		return nil, fmt.Errorf("unknown action: %s", action)
	}

	doc, err := s.docRepo.GetByID(ctx, v.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, docerr.NotFound("document not found: %s", v.DocumentID)
	}
	isOwner := doc.OwnerUserID == in.User.UserID
	if !rule.Allowed(in.User, isOwner) {
		return nil, docerr.PermissionDenied("role %s may not %s", in.User.Role, action)
	}
	if !rule.AllowsSource(v.Status) {
		return nil, docerr.InvalidStateTransition(string(v.Status), "%s is not allowed from status %s", action, v.Status)
	}

	if err := s.checkViewGate(ctx, action, v, in.User); err != nil {
		return nil, err
	}

	now := s.now()
	sourceStatus := v.Status
	v.Status = rule.Target
	v.UpdatedAt = now
	actorID := in.User.UserID

	switch action {
	case domain.ActionSubmit:
		v.SubmittedBy = &actorID
		v.SubmittedAt = &now
	case domain.ActionReviewApprove:
		v.ReviewedBy = &actorID
		v.ReviewedAt = &now
		if in.Comments != "" {
			c := in.Comments
			v.ReviewComments = &c
		}
	case domain.ActionApprove:
		v.ApprovedBy = &actorID
		v.ApprovedAt = &now
		if in.Comments != "" {
			c := in.Comments
			v.ApprovalComments = &c
		}
	case domain.ActionReject:
		v.RejectedBy = &actorID
		v.RejectedAt = &now
		if in.Comments != "" {
			c := in.Comments
			v.RejectionComments = &c
		}
	case domain.ActionPublish:
		v.PublishedBy = &actorID
		v.PublishedAt = &now
		v.VersionString = domain.EffectiveVersionString(v.VersionString)
		v.IsLatest = true
		if in.EffectiveDate != nil {
			v.EffectiveDate = in.EffectiveDate
		} else {
			v.EffectiveDate = &now
		}
	case domain.ActionArchive:
		v.ArchivedBy = &actorID
		v.ArchivedAt = &now
	}

	// Seal the actor's identity into the content at prepared/checked/approved
	// stages. The stamp is a content write, so the fingerprint moves with it.
	if rule.Stage != domain.StageNone {
		stamped, changed := domain.StampSignatory(v.Content, rule.Stage, domain.Signatory{
			Name:        in.User.FullName,
			Designation: in.User.Designation,
			Department:  in.User.Department,
			SignedAt:    now,
		})
		if changed {
			v.Content = stamped
			v.ContentFingerprint = domain.Fingerprint(stamped)
			v.LockCounter++
		}
	}

	if action == domain.ActionPublish {
		if err := s.repo.PublishCascade(ctx, v, now); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Update(ctx, v); err != nil {
			return nil, err
		}
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeVersion,
		EntityID:   v.VersionID.String(),
		Action:     auditAction(action),
		Actor:      in.User.Username,
		ActorRoles: []string{string(in.User.Role)},
		OldValues:  map[string]interface{}{"status": sourceStatus},
		NewValues:  map[string]interface{}{"status": v.Status, "versionString": v.VersionString},
		Reason:     in.Comments,
	})

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, &notification.Intent{
			Event:          notificationEvent(action),
			DocumentID:     doc.DocumentID,
			DocumentNumber: doc.DocumentNumber,
			DocumentTitle:  doc.Title,
			VersionID:      v.VersionID,
			VersionString:  v.VersionString,
			Actor:          in.User.Username,
			Department:     doc.Department,
			ChangeType:     string(v.ChangeType),
			OccurredAt:     now,
		})
	}

	s.logger.Info().
		Str("version_id", v.VersionID.String()).
		Str("action", string(action)).
		Str("from", string(sourceStatus)).
		Str("to", string(v.Status)).
		Str("actor", in.User.Username).
		Msg("version transition")
	return v, nil
}

// checkViewGate enforces the mandatory-view requirement: reviewers must have
// opened the content before deciding an UNDER_REVIEW version, approvers
// before deciding a PENDING_APPROVAL one, and admins always before publish.
func (s *Service) checkViewGate(ctx context.Context, action domain.Action, v *domain.DocumentVersion, u *domainUser.User) error {
	var gated bool
	switch action {
	case domain.ActionReviewApprove, domain.ActionApprove, domain.ActionReject:
		gated = view.RequiresView(u, v.Status)
	case domain.ActionPublish:
		gated = true
	}
	if !gated {
		return nil
	}
	fact, err := s.viewRepo.Get(ctx, v.VersionID, u.UserID)
	if err != nil {
		return err
	}
	if fact == nil {
		return docerr.ContentNotViewed("view the content before deciding on version %s", v.VersionString)
	}
	return nil
}

// GetVersion returns one version snapshot.
func (s *Service) GetVersion(ctx context.Context, versionID uuid.UUID) (*domain.DocumentVersion, error) {
	v, err := s.repo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, docerr.NotFound("version not found: %s", versionID)
	}
	return v, nil
}

// ListVersions returns the full lineage of a document.
func (s *Service) ListVersions(ctx context.Context, documentID uuid.UUID) ([]*domain.DocumentVersion, error) {
	return s.repo.ListByDocument(ctx, documentID)
}

func auditAction(action domain.Action) audit.Action {
	switch action {
	case domain.ActionSubmit:
		return audit.ActionSubmit
	case domain.ActionReviewApprove:
		return audit.ActionReviewApprove
	case domain.ActionApprove:
		return audit.ActionApprove
	case domain.ActionReject:
		return audit.ActionReject
	case domain.ActionPublish:
		return audit.ActionPublish
	case domain.ActionArchive:
		return audit.ActionArchive
	}
	return audit.ActionUpdate
}

func notificationEvent(action domain.Action) notification.EventType {
	switch action {
	case domain.ActionSubmit:
		return notification.EventVersionSubmitted
	case domain.ActionReviewApprove:
		return notification.EventVersionReviewApproved
	case domain.ActionApprove:
		return notification.EventVersionApproved
	case domain.ActionReject:
		return notification.EventVersionRejected
	case domain.ActionPublish:
		return notification.EventVersionPublished
	case domain.ActionArchive:
		return notification.EventVersionArchived
	}
	return notification.EventType(string(action))
}
