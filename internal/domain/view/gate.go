package view

import (
	"github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
)

// RequiresView reports whether the user must have viewed the version's
// content before acting on it at its current stage: reviewers (and admins)
// on versions under review, approvers (and admins) on versions pending
// approval. Authors are never view-gated, and neither is anyone once the
// version has left the review stages; publishing is gated separately.
func RequiresView(u *user.User, status version.Status) bool {
	switch status {
	case version.StatusUnderReview:
		return u.CanReview()
	case version.StatusPendingApproval:
		return u.CanApprove()
	default:
		return false
	}
}
