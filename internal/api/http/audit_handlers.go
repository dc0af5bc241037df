package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appAudit "github.com/docvault/docvault/internal/application/audit"
)

func (s *Server) queryAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := appAudit.QueryParams{}
	strParam := func(key string, dst **string) {
		if v := q.Get(key); v != "" {
			*dst = &v
		}
	}
	strParam("entity_type", &params.EntityType)
	strParam("entity_id", &params.EntityID)
	strParam("action", &params.Action)
	strParam("actor", &params.Actor)
	strParam("risk_level", &params.RiskLevel)
	strParam("cursor", &params.Cursor)
	if v := q.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid start_time")
			return
		}
		params.StartTime = &t
	}
	if v := q.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid end_time")
			return
		}
		params.EndTime = &t
	}
	if v := q.Get("tags"); v != "" {
		params.Tags = splitCSV(v)
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			params.Limit = l
		}
	}

	result, err := s.auditSvc.Query(r.Context(), params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := parseUUIDParam(r, "auditId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid audit id")
		return
	}
	entry, err := s.auditSvc.GetByID(r.Context(), auditID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) verifyAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := parseUUIDParam(r, "auditId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid audit id")
		return
	}
	result, err := s.auditSvc.VerifyIntegrity(r.Context(), auditID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) getEntityHistory(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")
	logs, err := s.auditSvc.GetEntityHistory(r.Context(), entityType, entityID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": logs})
}
