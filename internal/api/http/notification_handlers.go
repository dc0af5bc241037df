package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docvault/docvault/internal/domain/notification"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := notification.Filter{}
	q := r.URL.Query()
	if v := q.Get("event"); v != "" {
		event := notification.EventType(v)
		filter.Event = &event
	}
	if v := q.Get("status"); v != "" {
		status := notification.Status(v)
		filter.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := notification.Priority(v)
		filter.Priority = &priority
	}
	if v := q.Get("document_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid document_id")
			return
		}
		filter.DocumentID = &id
	}
	if v := q.Get("version_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid version_id")
			return
		}
		filter.VersionID = &id
	}
	if v := q.Get("target_user"); v != "" {
		filter.TargetUserID = &v
	}
	if v := q.Get("target_group"); v != "" {
		filter.TargetGroup = &v
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid since")
			return
		}
		filter.Since = &t
	}
	notifications, err := s.notificationSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (s *Server) sendNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "notificationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid notification id")
		return
	}
	if err := s.notificationSvc.SendNotification(r.Context(), id); err != nil {
		if docErrStatus(err) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notification_id": id, "status": "SENT"})
}

// sseEndpoint streams notifications over server-sent events. The client is
// keyed by client_id; the user and role group come from the session.
func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "client_id required")
		return
	}
	au := authUserFromContext(r.Context())
	username := au.User.Username
	// Group membership mirrors routing targets: the role name, the
	// department, plus any subscription groups the client asks for.
	groups := []string{strings.ToUpper(string(au.User.Role))}
	if au.User.Department != "" {
		groups = append(groups, au.User.Department)
	}
	groups = append(groups, splitCSV(r.URL.Query().Get("groups"))...)

	client := notification.NewSSEClient(clientID, &username, groups)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(clientID)
	if s.metrics != nil {
		s.metrics.SSEClientsConnected.Inc()
		defer s.metrics.SSEClientsConnected.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, ok := w.(http.Flusher)
	if !ok {
		return
	}
	// Initial comment flushes headers and confirms the stream.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg := <-client.MessageChan:
			if msg == nil {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
