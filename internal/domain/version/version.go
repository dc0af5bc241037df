package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Status represents the workflow status of a document version.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusUnderReview     Status = "UNDER_REVIEW"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusEffective       Status = "EFFECTIVE"
	StatusRejected        Status = "REJECTED"
	StatusObsolete        Status = "OBSOLETE"
	StatusArchived        Status = "ARCHIVED"
)

// ChangeType classifies the scope of a revision.
type ChangeType string

const (
	ChangeTypeMinor ChangeType = "MINOR"
	ChangeTypeMajor ChangeType = "MAJOR"
)

// DocumentVersion is one revision of a controlled document. Versions are
// never deleted; they are retired through OBSOLETE or ARCHIVED.
type DocumentVersion struct {
	ID                  int64      `json:"id"`
	VersionID           uuid.UUID  `json:"versionId"`
	DocumentID          uuid.UUID  `json:"documentId"`
	VersionNumber       int        `json:"versionNumber"`
	VersionString       string     `json:"versionString"`
	ParentVersionID     *uuid.UUID `json:"parentVersionId,omitempty"`
	IsLatest            bool       `json:"isLatest"`
	ReplacedByVersionID *uuid.UUID `json:"replacedByVersionId,omitempty"`

	Content            string `json:"content,omitempty"`
	ContentFingerprint string `json:"contentFingerprint"`
	LockCounter        int    `json:"lockCounter"`
	AutosaveCount      int    `json:"autosaveCount"`

	Status        Status     `json:"status"`
	ChangeType    ChangeType `json:"changeType"`
	ChangeReason  string     `json:"changeReason,omitempty"`
	ChangeSummary string     `json:"changeSummary,omitempty"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
	ObsoleteDate  *time.Time `json:"obsoleteDate,omitempty"`

	CreatedBy   uuid.UUID  `json:"createdBy"`
	SubmittedBy *uuid.UUID `json:"submittedBy,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ReviewedBy  *uuid.UUID `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ApprovedBy  *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	PublishedBy *uuid.UUID `json:"publishedBy,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	RejectedBy  *uuid.UUID `json:"rejectedBy,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	ArchivedBy  *uuid.UUID `json:"archivedBy,omitempty"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`

	ReviewComments    *string `json:"reviewComments,omitempty"`
	ApprovalComments  *string `json:"approvalComments,omitempty"`
	RejectionComments *string `json:"rejectionComments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsEditable reports whether content writes are allowed.
func (v *DocumentVersion) IsEditable() bool {
	return v.Status == StatusDraft
}

// Fingerprint computes the SHA-256 hex digest of content. The empty string
// fingerprints to the digest of zero bytes, matching saves of cleared content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

var versionStringPattern = regexp.MustCompile(`^v(\d+)\.(\d+)$`)

// ParseVersionString splits a vMAJOR.MINOR string into its numerals.
func ParseVersionString(s string) (major, minor int, ok bool) {
	m := versionStringPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(m[1])
	minor, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// IsPreEffective reports whether the string has the pre-release v0.x form.
func IsPreEffective(versionString string) bool {
	major, _, ok := ParseVersionString(versionString)
	return ok && major == 0
}

// FirstVersionString is the string assigned to the first draft of a document.
func FirstVersionString() string {
	return "v0.1"
}

// NextVersionString computes the semantic version string for a draft cloned
// from a parent. A malformed or missing parent string is treated as v1.0
// before the increment is applied.
func NextVersionString(parentVersionString string, changeType ChangeType) string {
	major, minor, ok := ParseVersionString(parentVersionString)
	if !ok {
		major, minor = 1, 0
	}
	if changeType == ChangeTypeMajor {
		return fmt.Sprintf("v%d.0", major+1)
	}
	return fmt.Sprintf("v%d.%d", major, minor+1)
}

// EffectiveVersionString rewrites a pre-effective v0.x string to v1.0 at
// first publication; already-effective strings are left unchanged.
func EffectiveVersionString(versionString string) string {
	if IsPreEffective(versionString) {
		return "v1.0"
	}
	return versionString
}

func ValidateChangeType(ct ChangeType) error {
	switch ct {
	case ChangeTypeMinor, ChangeTypeMajor:
		return nil
	default:
		return fmt.Errorf("invalid change type: %s", ct)
	}
}
