package httpapi

import (
	"net/http"

	appUser "github.com/docvault/docvault/internal/application/user"
	domainUser "github.com/docvault/docvault/internal/domain/user"
)

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u, err := s.userSvc.CreateUser(r.Context(), appUser.CreateInput{
		Username:    req.Username,
		Password:    req.Password,
		FullName:    req.FullName,
		Designation: req.Designation,
		Department:  req.Department,
		Role:        domainUser.Role(req.Role),
		Status:      domainUser.Status(req.Status),
		Actor:       au.User.Username,
	})
	if err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := domainUser.Filter{}
	q := r.URL.Query()
	if v := q.Get("role"); v != "" {
		role := domainUser.Role(v)
		filter.Role = &role
	}
	if v := q.Get("status"); v != "" {
		status := domainUser.Status(v)
		filter.Status = &status
	}
	if v := q.Get("department"); v != "" {
		filter.Department = &v
	}
	if v := q.Get("username"); v != "" {
		filter.Username = &v
	}
	users, err := s.userSvc.ListUsers(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	u, err := s.userSvc.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type updateUserRequest struct {
	FullName    *string `json:"full_name"`
	Designation *string `json:"designation"`
	Department  *string `json:"department"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	input := appUser.UpdateInput{
		FullName:    req.FullName,
		Designation: req.Designation,
		Department:  req.Department,
		Actor:       au.User.Username,
	}
	if req.Role != nil {
		role := domainUser.Role(*req.Role)
		input.Role = &role
	}
	if req.Status != nil {
		status := domainUser.Status(*req.Status)
		input.Status = &status
	}
	u, err := s.userSvc.UpdateUser(r.Context(), userID, input)
	if err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// changePassword lets a user rotate their own password. Rotation signs
// with the current password, so nobody can rotate on another's behalf.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	if au.User.UserID != userID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "may only change your own password")
		return
	}
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.userSvc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
