package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents document status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Document is the controlled-document aggregate; its content lives in versions.
type Document struct {
	ID             int64     `json:"id"`
	DocumentID     uuid.UUID `json:"documentId"`
	DocumentNumber string    `json:"documentNumber"`
	Title          string    `json:"title"`
	Department     string    `json:"department,omitempty"`
	Status         Status    `json:"status"`
	OwnerUserID    uuid.UUID `json:"ownerUserId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeNumber collapses whitespace to dashes and uppercases the number.
func NormalizeNumber(number string) string {
	return strings.ToUpper(whitespacePattern.ReplaceAllString(strings.TrimSpace(number), "-"))
}

// NumberPrefix is the document number without its sequence suffix:
// PREFIX-DEPT-YYYYMMDD (department optional). Counting existing numbers
// under this prefix yields the next daily sequence value.
func NumberPrefix(prefix, department string, day time.Time) string {
	if prefix == "" {
		prefix = "SOP"
	}
	dateStr := day.UTC().Format("20060102")
	if department != "" {
		dept := strings.ToUpper(strings.ReplaceAll(department, " ", ""))
		if len(dept) > 4 {
			dept = dept[:4]
		}
		return fmt.Sprintf("%s-%s-%s", prefix, dept, dateStr)
	}
	return fmt.Sprintf("%s-%s", prefix, dateStr)
}

// BuildNumber formats a document number as PREFIX-DEPT-YYYYMMDD-NNNN,
// e.g. SOP-QA-20251129-0001. Department is optional.
func BuildNumber(prefix, department string, day time.Time, sequence int) string {
	return fmt.Sprintf("%s-%04d", NumberPrefix(prefix, department, day), sequence)
}
