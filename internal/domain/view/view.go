package view

import (
	"time"

	"github.com/google/uuid"
)

// DocumentView records that a user has opened a version's content. One row
// per (version, user); re-viewing refreshes the timestamp.
type DocumentView struct {
	ID         int64     `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	VersionID  uuid.UUID `json:"versionId"`
	UserID     uuid.UUID `json:"userId"`
	ViewedAt   time.Time `json:"viewedAt"`
}
