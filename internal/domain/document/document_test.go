package document

import (
	"testing"
	"time"
)

func TestNormalizeNumber(t *testing.T) {
	if got := NormalizeNumber("  sop qa 001  "); got != "SOP-QA-001" {
		t.Fatalf("unexpected normalized number: %s", got)
	}
	if got := NormalizeNumber("SOP-QA-001"); got != "SOP-QA-001" {
		t.Fatalf("unexpected normalized number: %s", got)
	}
}

func TestBuildNumber(t *testing.T) {
	day := time.Date(2025, 11, 29, 10, 0, 0, 0, time.UTC)
	if got := BuildNumber("SOP", "QA", day, 1); got != "SOP-QA-20251129-0001" {
		t.Fatalf("unexpected number: %s", got)
	}
	if got := BuildNumber("", "Quality Assurance", day, 12); got != "SOP-QUAL-20251129-0012" {
		t.Fatalf("unexpected number: %s", got)
	}
	if got := BuildNumber("WI", "", day, 3); got != "WI-20251129-0003" {
		t.Fatalf("unexpected number: %s", got)
	}
}
