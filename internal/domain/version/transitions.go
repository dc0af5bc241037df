package version

import (
	"github.com/docvault/docvault/internal/domain/user"
)

// Action names a workflow transition.
type Action string

const (
	ActionSubmit        Action = "SUBMIT"
	ActionReviewApprove Action = "REVIEW_APPROVE"
	ActionApprove       Action = "APPROVE"
	ActionReject        Action = "REJECT"
	ActionPublish       Action = "PUBLISH"
	ActionArchive       Action = "ARCHIVE"
)

// SignatoryStage names the signatory block an action stamps into content.
type SignatoryStage string

const (
	StageNone     SignatoryStage = ""
	StagePrepared SignatoryStage = "PREPARED"
	StageChecked  SignatoryStage = "CHECKED"
	StageApproved SignatoryStage = "APPROVED"
)

// Rule describes one row of the transition table: where an action may start,
// where it lands, who may perform it, and which signatory block it stamps.
// Target for ActionReject is always StatusDraft regardless of source.
type Rule struct {
	Action    Action
	Sources   []Status
	Target    Status
	Allowed   func(u *user.User, isOwner bool) bool
	Stage     SignatoryStage
	AnySource bool
}

var transitionTable = map[Action]Rule{
	ActionSubmit: {
		Action:  ActionSubmit,
		Sources: []Status{StatusDraft},
		Target:  StatusUnderReview,
		Allowed: func(u *user.User, isOwner bool) bool {
			return u.IsAdmin() || (u.Role == user.RoleAuthor && isOwner)
		},
		Stage: StagePrepared,
	},
	ActionReviewApprove: {
		Action:  ActionReviewApprove,
		Sources: []Status{StatusUnderReview},
		Target:  StatusPendingApproval,
		Allowed: func(u *user.User, _ bool) bool { return u.CanReview() },
		Stage:   StageChecked,
	},
	ActionApprove: {
		Action:  ActionApprove,
		Sources: []Status{StatusPendingApproval},
		Target:  StatusApproved,
		Allowed: func(u *user.User, _ bool) bool { return u.CanApprove() },
		Stage:   StageApproved,
	},
	ActionReject: {
		Action:  ActionReject,
		Sources: []Status{StatusUnderReview, StatusPendingApproval},
		Target:  StatusDraft,
		Allowed: func(u *user.User, _ bool) bool {
			return u.Role == user.RoleReviewer || u.Role == user.RoleApprover || u.IsAdmin()
		},
	},
	ActionPublish: {
		Action:  ActionPublish,
		Sources: []Status{StatusApproved},
		Target:  StatusEffective,
		Allowed: func(u *user.User, _ bool) bool { return u.IsAdmin() },
	},
	ActionArchive: {
		Action:    ActionArchive,
		Target:    StatusArchived,
		Allowed:   func(u *user.User, _ bool) bool { return u.IsAdmin() },
		AnySource: true,
	},
}

// RuleFor returns the transition rule for an action.
func RuleFor(action Action) (Rule, bool) {
	r, ok := transitionTable[action]
	return r, ok
}

// AllowsSource reports whether the rule may fire from the given status.
func (r Rule) AllowsSource(s Status) bool {
	if r.AnySource {
		return s != StatusArchived
	}
	for _, src := range r.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// RejectRequiresReviewerStage reports whether a reject from the given source
// is gated on the reviewer stage (as opposed to the approver stage).
func RejectRequiresReviewerStage(source Status) bool {
	return source == StatusUnderReview
}
