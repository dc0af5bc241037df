package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// signedFields flattens an entry into its canonical field sequence: identity,
// who did what to which record, the regulated-change payload, and the request
// trail. The order is fixed; reordering invalidates every stored signature.
func signedFields(log *AuditLog) []string {
	ip := ""
	if log.ActorIP != nil {
		ip = log.ActorIP.String()
	}
	return []string{
		log.AuditID.String(),
		string(log.EntityType),
		log.EntityID,
		string(log.Action),
		log.Actor,
		strings.Join(log.ActorRoles, ","),
		ip,
		log.UserAgent,
		base64.StdEncoding.EncodeToString(log.OldValues),
		base64.StdEncoding.EncodeToString(log.NewValues),
		base64.StdEncoding.EncodeToString(log.Diff),
		log.Reason,
		string(log.RiskLevel),
		strings.Join(log.Tags, ","),
		log.TraceID,
		log.SessionID,
		log.RequestMethod,
		log.RequestPath,
		strconv.Itoa(log.ResponseStatus),
		strconv.Itoa(log.DurationMs),
		log.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// SignAuditLog computes an HMAC-SHA256 over the canonical rendering of the
// entry. Each field is length-prefixed so no field value can forge a
// boundary into its neighbor.
func SignAuditLog(log *AuditLog, key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, f := range signedFields(log) {
		mac.Write([]byte(strconv.Itoa(len(f))))
		mac.Write([]byte{':'})
		mac.Write([]byte(f))
	}
	return mac.Sum(nil)
}

// VerifyAuditLogSignature recomputes the signature and compares it in
// constant time. An entry with no signature never verifies.
func VerifyAuditLogSignature(log *AuditLog, key []byte) bool {
	if len(log.Signature) == 0 {
		return false
	}
	return hmac.Equal(SignAuditLog(log, key), log.Signature)
}
