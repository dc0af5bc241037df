package view

import (
	"testing"

	"github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/domain/version"
)

func TestRequiresView(t *testing.T) {
	author := &user.User{Role: user.RoleAuthor}
	reviewer := &user.User{Role: user.RoleReviewer}
	approver := &user.User{Role: user.RoleApprover}
	admin := &user.User{Role: user.RoleAdmin}

	cases := []struct {
		u      *user.User
		status version.Status
		want   bool
	}{
		{reviewer, version.StatusUnderReview, true},
		{admin, version.StatusUnderReview, true},
		{approver, version.StatusUnderReview, false},
		{author, version.StatusUnderReview, false},
		{approver, version.StatusPendingApproval, true},
		{admin, version.StatusPendingApproval, true},
		{reviewer, version.StatusPendingApproval, false},
		{author, version.StatusPendingApproval, false},
		{reviewer, version.StatusDraft, false},
		{admin, version.StatusApproved, false},
		{admin, version.StatusEffective, false},
	}
	for _, c := range cases {
		if got := RequiresView(c.u, c.status); got != c.want {
			t.Fatalf("RequiresView(%s, %s) = %v, want %v", c.u.Role, c.status, got, c.want)
		}
	}
}
