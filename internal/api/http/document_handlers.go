package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appDocument "github.com/docvault/docvault/internal/application/document"
	appVersion "github.com/docvault/docvault/internal/application/version"
	domainDocument "github.com/docvault/docvault/internal/domain/document"
	domainVersion "github.com/docvault/docvault/internal/domain/version"
)

type createDocumentRequest struct {
	Title      string `json:"title"`
	Prefix     string `json:"prefix"`
	Department string `json:"department"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req createDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	doc, err := s.documentSvc.Create(r.Context(), appDocument.CreateInput{
		Title:      req.Title,
		Prefix:     req.Prefix,
		Department: req.Department,
		Owner:      au.User,
	})
	if err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := domainDocument.Filter{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := domainDocument.Status(v)
		filter.Status = &status
	}
	if v := q.Get("department"); v != "" {
		filter.Department = &v
	}
	if v := q.Get("owner"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid owner id")
			return
		}
		filter.OwnerUserID = &ownerID
	}
	docs, err := s.documentSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid document id")
		return
	}
	doc, err := s.documentSvc.Get(r.Context(), documentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) getDocumentByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "documentNumber")
	doc, err := s.documentSvc.GetByNumber(r.Context(), number)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid document id")
		return
	}
	versions, err := s.versionSvc.ListVersions(r.Context(), documentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

type createVersionRequest struct {
	ChangeType   string `json:"change_type"`
	ChangeReason string `json:"change_reason"`
	Content      string `json:"content"`
}

func (s *Server) createVersion(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	documentID, err := parseUUIDParam(r, "documentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid document id")
		return
	}
	var req createVersionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	v, err := s.versionSvc.Create(r.Context(), appVersion.CreateInput{
		DocumentID:   documentID,
		User:         au.User,
		ChangeType:   domainVersion.ChangeType(req.ChangeType),
		ChangeReason: req.ChangeReason,
		Content:      req.Content,
	})
	if err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, v)
}
