package httpapi

import (
	"net/http"
	"time"

	appVersion "github.com/docvault/docvault/internal/application/version"
	"github.com/docvault/docvault/internal/domain/docerr"
	domainVersion "github.com/docvault/docvault/internal/domain/version"
)

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	v, err := s.versionSvc.GetVersion(r.Context(), versionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

type saveContentRequest struct {
	Content             string `json:"content"`
	ExpectedFingerprint string `json:"expected_fingerprint"`
	LockToken           string `json:"lock_token"`
	Autosave            bool   `json:"autosave"`
}

func (s *Server) saveContent(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	var req saveContentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	v, err := s.versionSvc.SaveContent(r.Context(), appVersion.SaveInput{
		VersionID:           versionID,
		User:                au.User,
		ExpectedFingerprint: req.ExpectedFingerprint,
		Content:             req.Content,
		LockToken:           req.LockToken,
		Autosave:            req.Autosave,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSaveConflict(err)
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

type transitionRequest struct {
	Password      string     `json:"password"`
	Comments      string     `json:"comments"`
	EffectiveDate *time.Time `json:"effective_date"`
}

type transitionFunc func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error)

// handleTransition is the shared shape of every lifecycle endpoint: decode
// the signing request, run the transition, record the outcome.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, action string, fn transitionFunc) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	v, err := fn(r, appVersion.TransitionInput{
		VersionID:     versionID,
		User:          au.User,
		Password:      req.Password,
		Comments:      req.Comments,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordTransition(action, "rejected")
			if docerr.KindOf(err) == docerr.KindESignatureFailed {
				s.metrics.RecordESignatureFailure()
			}
		}
		respondServiceError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(action, "applied")
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) submitVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "submit", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.Submit(r.Context(), in)
	})
}

func (s *Server) reviewApproveVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "review_approve", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.ReviewApprove(r.Context(), in)
	})
}

func (s *Server) approveVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "approve", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.Approve(r.Context(), in)
	})
}

func (s *Server) rejectVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "reject", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.Reject(r.Context(), in)
	})
}

func (s *Server) publishVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "publish", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.Publish(r.Context(), in)
	})
}

func (s *Server) archiveVersion(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "archive", func(r *http.Request, in appVersion.TransitionInput) (*domainVersion.DocumentVersion, error) {
		return s.versionSvc.Archive(r.Context(), in)
	})
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	view, err := s.viewSvc.RecordView(r.Context(), versionID, au.User)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) listViewers(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	views, err := s.viewSvc.ListViewers(r.Context(), versionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"viewers": views})
}
