package version

import (
	"regexp"
	"time"
)

// Content placeholders use the {{TOKEN_NAME}} form. Signatory tokens bind the
// preparer/checker/approver identity into the content when the matching
// transition fires, sealing who acted and when into the document itself.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

const signatoryDateLayout = "2006-01-02"

// tokenDefault is substituted for signatory tokens with no bound value.
const tokenDefault = "-NA-"

// Signatory carries the identity stamped into a signatory block.
type Signatory struct {
	Name        string
	Designation string
	Department  string
	SignedAt    time.Time
}

// StampSignatory replaces the stage's signatory tokens in content with the
// signer's identity. Tokens of other stages are left untouched. Returns the
// rewritten content and whether anything changed.
func StampSignatory(content string, stage SignatoryStage, s Signatory) (string, bool) {
	if stage == StageNone || content == "" {
		return content, false
	}
	prefix := "SIGNATORY_" + string(stage) + "_"
	values := map[string]string{
		prefix + "NAME":        orDefault(s.Name),
		prefix + "DESIGNATION": orDefault(s.Designation),
		prefix + "DEPARTMENT":  orDefault(s.Department),
		prefix + "DATE":        s.SignedAt.UTC().Format(signatoryDateLayout),
	}
	changed := false
	out := tokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := tokenPattern.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			changed = true
			return v
		}
		return match
	})
	return out, changed
}

func orDefault(v string) string {
	if v == "" {
		return tokenDefault
	}
	return v
}
