package httpapi

import (
	"net"
	"net/http"

	appEditlock "github.com/docvault/docvault/internal/application/editlock"
)

type acquireLockRequest struct {
	TimeoutMinutes int `json:"timeout_minutes"`
}

func (s *Server) acquireLock(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	var req acquireLockRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	userAgent := r.UserAgent()
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	sessionID := au.SessionID.String()
	lock, err := s.editlockSvc.Acquire(r.Context(), appEditlock.AcquireInput{
		VersionID:      versionID,
		User:           au.User,
		TimeoutMinutes: req.TimeoutMinutes,
		SessionID:      &sessionID,
		IPAddress:      &ip,
		UserAgent:      &userAgent,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// The token only travels in the acquire response; the stored lock
	// never serializes it.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lock":       lock,
		"lock_token": lock.LockToken,
	})
}

type heartbeatRequest struct {
	LockToken     string `json:"lock_token"`
	ExtendMinutes int    `json:"extend_minutes"`
}

func (s *Server) heartbeatLock(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	var req heartbeatRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	lock, err := s.editlockSvc.Heartbeat(r.Context(), versionID, req.LockToken, au.User, req.ExtendMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lock)
}

// releaseLock releases the version's edit lock. Admins may force-release a
// lock they do not own by sending an empty token.
func (s *Server) releaseLock(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	token := r.URL.Query().Get("lock_token")
	if err := s.editlockSvc.Release(r.Context(), versionID, token, au.User); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) lockStatus(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	status, err := s.editlockSvc.Status(r.Context(), versionID, au.User)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
