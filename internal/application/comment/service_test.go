package comment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	auditmocks "github.com/docvault/docvault/internal/domain/audit/mocks"
	domain "github.com/docvault/docvault/internal/domain/comment"
	cmocks "github.com/docvault/docvault/internal/domain/comment/mocks"
	"github.com/docvault/docvault/internal/domain/docerr"
	"github.com/docvault/docvault/internal/domain/document"
	dmocks "github.com/docvault/docvault/internal/domain/document/mocks"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
	vmocks "github.com/docvault/docvault/internal/domain/version/mocks"
)

func newCommentService(t *testing.T) (*Service, *cmocks.MockRepository, *vmocks.MockRepository, *dmocks.MockRepository) {
	t.Helper()
	auditRepo := &auditmocks.MockRepository{}
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	auditSvc := appAudit.NewService(auditRepo, zerolog.Nop(), nil)

	repo := &cmocks.MockRepository{}
	versionRepo := &vmocks.MockRepository{}
	docRepo := &dmocks.MockRepository{}
	svc := NewService(repo, versionRepo, docRepo, auditSvc, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc, repo, versionRepo, docRepo
}

func author() *domainUser.User {
	return &domainUser.User{UserID: uuid.New(), Username: "jchen", Role: domainUser.RoleAuthor}
}

func TestCreateComment(t *testing.T) {
	t.Run("stores a comment anchored to the version", func(t *testing.T) {
		svc, repo, versionRepo, _ := newCommentService(t)
		u := author()
		v := &version.DocumentVersion{VersionID: uuid.New(), DocumentID: uuid.New(), VersionString: "v0.2", Status: version.StatusUnderReview}
		sel := "storage conditions"
		start, end := 120, 138

		versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*comment.Comment")).Return(nil)

		c, err := svc.Create(context.Background(), CreateInput{
			VersionID:      v.VersionID,
			User:           u,
			Text:           "cite the stability study here",
			SelectedText:   &sel,
			SelectionStart: &start,
			SelectionEnd:   &end,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.CommentID)
		assert.Equal(t, v.VersionID, c.VersionID)
		assert.Equal(t, u.UserID, c.UserID)
		assert.Equal(t, &sel, c.SelectedText)
		assert.False(t, c.Resolved)
		assert.Equal(t, svc.now(), c.CreatedAt)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		svc, _, _, _ := newCommentService(t)
		_, err := svc.Create(context.Background(), CreateInput{VersionID: uuid.New(), User: author()})
		assert.Error(t, err)
	})

	t.Run("unknown version is rejected", func(t *testing.T) {
		svc, _, versionRepo, _ := newCommentService(t)
		versionID := uuid.New()
		versionRepo.On("GetByID", mock.Anything, versionID).Return(nil, nil)

		_, err := svc.Create(context.Background(), CreateInput{VersionID: versionID, User: author(), Text: "hi"})
		assert.Equal(t, docerr.KindNotFound, docerr.KindOf(err))
	})
}

func TestListComments(t *testing.T) {
	svc, repo, versionRepo, _ := newCommentService(t)
	v := &version.DocumentVersion{VersionID: uuid.New(), DocumentID: uuid.New()}
	open := []*domain.Comment{{CommentID: uuid.New(), VersionID: v.VersionID}}

	versionRepo.On("GetByID", mock.Anything, v.VersionID).Return(v, nil)
	repo.On("ListByVersion", mock.Anything, v.VersionID, false).Return(open, nil)

	got, err := svc.List(context.Background(), v.VersionID, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpdateCommentText(t *testing.T) {
	t.Run("author edits own comment", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		u := author()
		c := &domain.Comment{CommentID: uuid.New(), VersionID: uuid.New(), UserID: u.UserID, Text: "old"}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)

		got, err := svc.UpdateText(context.Background(), c.CommentID, u, "new wording")
		require.NoError(t, err)
		assert.Equal(t, "new wording", got.Text)
		assert.Equal(t, svc.now(), got.UpdatedAt)
	})

	t.Run("another user cannot edit the text", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		c := &domain.Comment{CommentID: uuid.New(), UserID: uuid.New()}
		other := &domainUser.User{UserID: uuid.New(), Username: "rpatel", Role: domainUser.RoleReviewer}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)

		_, err := svc.UpdateText(context.Background(), c.CommentID, other, "hijack")
		assert.Equal(t, docerr.KindPermissionDenied, docerr.KindOf(err))
	})

	t.Run("admin may edit any comment", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		c := &domain.Comment{CommentID: uuid.New(), UserID: uuid.New(), Text: "old"}
		admin := &domainUser.User{UserID: uuid.New(), Username: "admin", Role: domainUser.RoleAdmin}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)

		got, err := svc.UpdateText(context.Background(), c.CommentID, admin, "cleaned up")
		require.NoError(t, err)
		assert.Equal(t, "cleaned up", got.Text)
	})
}

func TestResolveComment(t *testing.T) {
	t.Run("author resolves own comment", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		u := author()
		c := &domain.Comment{CommentID: uuid.New(), VersionID: uuid.New(), UserID: u.UserID}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)

		got, err := svc.Resolve(context.Background(), c.CommentID, u, true)
		require.NoError(t, err)
		assert.True(t, got.Resolved)
		require.NotNil(t, got.ResolvedBy)
		assert.Equal(t, u.UserID, *got.ResolvedBy)
		require.NotNil(t, got.ResolvedAt)
	})

	t.Run("document owner may resolve another user's comment", func(t *testing.T) {
		svc, repo, versionRepo, docRepo := newCommentService(t)
		owner := author()
		c := &domain.Comment{CommentID: uuid.New(), VersionID: uuid.New(), UserID: uuid.New()}
		v := &version.DocumentVersion{VersionID: c.VersionID, DocumentID: uuid.New()}
		doc := &document.Document{DocumentID: v.DocumentID, OwnerUserID: owner.UserID}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		versionRepo.On("GetByID", mock.Anything, c.VersionID).Return(v, nil)
		docRepo.On("GetByID", mock.Anything, v.DocumentID).Return(doc, nil)
		repo.On("Update", mock.Anything, c).Return(nil)

		got, err := svc.Resolve(context.Background(), c.CommentID, owner, true)
		require.NoError(t, err)
		assert.True(t, got.Resolved)
	})

	t.Run("unrelated user cannot resolve", func(t *testing.T) {
		svc, repo, versionRepo, docRepo := newCommentService(t)
		c := &domain.Comment{CommentID: uuid.New(), VersionID: uuid.New(), UserID: uuid.New()}
		v := &version.DocumentVersion{VersionID: c.VersionID, DocumentID: uuid.New()}
		doc := &document.Document{DocumentID: v.DocumentID, OwnerUserID: uuid.New()}
		stranger := &domainUser.User{UserID: uuid.New(), Username: "mkim", Role: domainUser.RoleReviewer}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		versionRepo.On("GetByID", mock.Anything, c.VersionID).Return(v, nil)
		docRepo.On("GetByID", mock.Anything, v.DocumentID).Return(doc, nil)

		_, err := svc.Resolve(context.Background(), c.CommentID, stranger, true)
		assert.Equal(t, docerr.KindPermissionDenied, docerr.KindOf(err))
	})

	t.Run("reopening clears the resolution stamp", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		u := author()
		by := u.UserID
		at := time.Now().UTC()
		c := &domain.Comment{CommentID: uuid.New(), UserID: u.UserID, Resolved: true, ResolvedBy: &by, ResolvedAt: &at}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)

		got, err := svc.Resolve(context.Background(), c.CommentID, u, false)
		require.NoError(t, err)
		assert.False(t, got.Resolved)
		assert.Nil(t, got.ResolvedBy)
		assert.Nil(t, got.ResolvedAt)
	})
}

func TestDeleteComment(t *testing.T) {
	t.Run("author deletes own comment", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		u := author()
		c := &domain.Comment{CommentID: uuid.New(), UserID: u.UserID}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)
		repo.On("Delete", mock.Anything, c.CommentID).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), c.CommentID, u))
	})

	t.Run("non-author non-admin is refused", func(t *testing.T) {
		svc, repo, _, _ := newCommentService(t)
		c := &domain.Comment{CommentID: uuid.New(), UserID: uuid.New()}
		other := &domainUser.User{UserID: uuid.New(), Username: "rpatel", Role: domainUser.RoleReviewer}

		repo.On("GetByID", mock.Anything, c.CommentID).Return(c, nil)

		err := svc.Delete(context.Background(), c.CommentID, other)
		assert.Equal(t, docerr.KindPermissionDenied, docerr.KindOf(err))
	})
}
