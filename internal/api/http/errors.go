package httpapi

import (
	"net/http"
	"time"

	"github.com/docvault/docvault/internal/domain/docerr"
)

// docErrStatus reports whether err carries a classified kind the error
// responder knows how to map.
func docErrStatus(err error) bool {
	return docerr.AsError(err) != nil
}

// respondServiceError maps a classified service error to an HTTP response.
// Conflict detail rides on headers and extra body fields so clients can
// recover without a second round trip.
func respondServiceError(w http.ResponseWriter, err error) {
	e := docerr.AsError(err)
	if e == nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	switch e.Kind {
	case docerr.KindNotFound:
		respondError(w, http.StatusNotFound, string(e.Kind), e.Message)
	case docerr.KindPermissionDenied:
		respondError(w, http.StatusForbidden, string(e.Kind), e.Message)
	case docerr.KindESignatureFailed:
		respondError(w, http.StatusUnauthorized, string(e.Kind), e.Message)
	case docerr.KindContentNotViewed:
		respondError(w, http.StatusPreconditionFailed, string(e.Kind), e.Message)
	case docerr.KindInvalidStateTransition:
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":          string(e.Kind),
			"message":        e.Message,
			"current_status": e.CurrentStatus,
		})
	case docerr.KindLockConflict:
		w.Header().Set("X-Lock-Owner", e.LockOwner)
		if e.LockExpiresAt != nil {
			w.Header().Set("X-Lock-Expires", e.LockExpiresAt.UTC().Format(time.RFC3339))
		}
		respondJSON(w, http.StatusLocked, map[string]interface{}{
			"error":           string(e.Kind),
			"message":         e.Message,
			"lock_owner":      e.LockOwner,
			"lock_expires_at": e.LockExpiresAt,
		})
	case docerr.KindLockExpired:
		respondError(w, http.StatusLocked, string(e.Kind), e.Message)
	case docerr.KindConcurrencyConflict:
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":        string(e.Kind),
			"message":      e.Message,
			"current_hash": e.CurrentFingerprint,
		})
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", e.Message)
	}
}
