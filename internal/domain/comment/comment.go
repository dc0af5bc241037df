package comment

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an inline annotation a reviewer or approver leaves on a
// version's content. The optional selection fields anchor the comment to a
// highlighted text range; a comment without them applies to the version as
// a whole.
type Comment struct {
	ID        int64     `json:"id"`
	CommentID uuid.UUID `json:"commentId"`
	VersionID uuid.UUID `json:"versionId"`
	UserID    uuid.UUID `json:"userId"`

	Text string `json:"text"`

	SelectedText   *string `json:"selectedText,omitempty"`
	SelectionStart *int    `json:"selectionStart,omitempty"`
	SelectionEnd   *int    `json:"selectionEnd,omitempty"`
	// Surrounding text, kept so the anchor can be re-found after edits
	// shift the offsets.
	TextContext *string `json:"textContext,omitempty"`

	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolvedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Resolve marks the comment addressed by the given user.
func (c *Comment) Resolve(by uuid.UUID, at time.Time) {
	c.Resolved = true
	c.ResolvedAt = &at
	c.ResolvedBy = &by
	c.UpdatedAt = at
}

// Reopen clears a resolution.
func (c *Comment) Reopen(at time.Time) {
	c.Resolved = false
	c.ResolvedAt = nil
	c.ResolvedBy = nil
	c.UpdatedAt = at
}
