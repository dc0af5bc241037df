package httpapi

import (
	"net/http"

	appComment "github.com/docvault/docvault/internal/application/comment"
)

type createCommentRequest struct {
	Text           string  `json:"text"`
	SelectedText   *string `json:"selected_text"`
	SelectionStart *int    `json:"selection_start"`
	SelectionEnd   *int    `json:"selection_end"`
	TextContext    *string `json:"text_context"`
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	var req createCommentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	c, err := s.commentSvc.Create(r.Context(), appComment.CreateInput{
		VersionID:      versionID,
		User:           au.User,
		Text:           req.Text,
		SelectedText:   req.SelectedText,
		SelectionStart: req.SelectionStart,
		SelectionEnd:   req.SelectionEnd,
		TextContext:    req.TextContext,
	})
	if err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	versionID, err := parseUUIDParam(r, "versionId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version id")
		return
	}
	includeResolved := r.URL.Query().Get("include_resolved") == "true"
	comments, err := s.commentSvc.List(r.Context(), versionID, includeResolved)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

type updateCommentRequest struct {
	Text     *string `json:"text"`
	Resolved *bool   `json:"resolved"`
}

// updateComment edits the comment text, flips the resolved flag, or both.
func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	commentID, err := parseUUIDParam(r, "commentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid comment id")
		return
	}
	var req updateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Text == nil && req.Resolved == nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "nothing to update")
		return
	}

	if req.Text != nil {
		if _, err := s.commentSvc.UpdateText(r.Context(), commentID, au.User, *req.Text); err != nil {
			if docErrStatus(err) {
				respondServiceError(w, err)
				return
			}
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}
	var c interface{}
	if req.Resolved != nil {
		updated, err := s.commentSvc.Resolve(r.Context(), commentID, au.User, *req.Resolved)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		c = updated
	}
	if c == nil {
		updated, err := s.commentSvc.Get(r.Context(), commentID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		c = updated
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	commentID, err := parseUUIDParam(r, "commentId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid comment id")
		return
	}
	if err := s.commentSvc.Delete(r.Context(), commentID, au.User); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
