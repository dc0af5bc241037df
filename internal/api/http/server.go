package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appAudit "github.com/docvault/docvault/internal/application/audit"
	appAuth "github.com/docvault/docvault/internal/application/auth"
	appComment "github.com/docvault/docvault/internal/application/comment"
	appDocument "github.com/docvault/docvault/internal/application/document"
	appEditlock "github.com/docvault/docvault/internal/application/editlock"
	appNotification "github.com/docvault/docvault/internal/application/notification"
	appUser "github.com/docvault/docvault/internal/application/user"
	appVersion "github.com/docvault/docvault/internal/application/version"
	appView "github.com/docvault/docvault/internal/application/view"
	domainUser "github.com/docvault/docvault/internal/domain/user"
	"github.com/docvault/docvault/internal/infrastructure/metrics"
	"github.com/docvault/docvault/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	documentSvc         *appDocument.Service
	versionSvc          *appVersion.Service
	editlockSvc         *appEditlock.Service
	viewSvc             *appView.Service
	commentSvc          *appComment.Service
	notificationSvc     *appNotification.Service
	auditSvc            *appAudit.Service
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	sseHub              *sse.Hub
	metrics             *metrics.Metrics
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	documentSvc *appDocument.Service,
	versionSvc *appVersion.Service,
	editlockSvc *appEditlock.Service,
	viewSvc *appView.Service,
	commentSvc *appComment.Service,
	notificationSvc *appNotification.Service,
	auditSvc *appAudit.Service,
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	sseHub *sse.Hub,
	m *metrics.Metrics,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		documentSvc:         documentSvc,
		versionSvc:          versionSvc,
		editlockSvc:         editlockSvc,
		viewSvc:             viewSvc,
		commentSvc:          commentSvc,
		notificationSvc:     notificationSvc,
		auditSvc:            auditSvc,
		authSvc:             authSvc,
		userSvc:             userSvc,
		sseHub:              sseHub,
		metrics:             m,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/bootstrap", s.bootstrapAdmin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", s.createDocument)
				r.Get("/", s.listDocuments)
				r.Get("/number/{documentNumber}", s.getDocumentByNumber)
				r.Get("/{documentId}", s.getDocument)
				r.Get("/{documentId}/versions", s.listVersions)
				r.Post("/{documentId}/versions", s.createVersion)
			})

			r.Route("/versions/{versionId}", func(r chi.Router) {
				r.Get("/", s.getVersion)
				r.Put("/content", s.saveContent)

				r.Post("/view", s.recordView)
				r.Get("/viewers", s.listViewers)

				r.Post("/comments", s.createComment)
				r.Get("/comments", s.listComments)
				r.Patch("/comments/{commentId}", s.updateComment)
				r.Delete("/comments/{commentId}", s.deleteComment)

				r.Post("/submit", s.submitVersion)
				r.Post("/review-approve", s.reviewApproveVersion)
				r.Post("/approve", s.approveVersion)
				r.Post("/reject", s.rejectVersion)
				r.Post("/publish", s.publishVersion)
				r.Post("/archive", s.archiveVersion)

				r.Post("/lock", s.acquireLock)
				r.Post("/lock/heartbeat", s.heartbeatLock)
				r.Delete("/lock", s.releaseLock)
				r.Get("/lock", s.lockStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.listNotifications)
				r.Post("/{notificationId}/send", s.sendNotification)
				r.Get("/sse", s.sseEndpoint)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/", s.createUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Patch("/{userId}", s.updateUser)
				r.Put("/{userId}/password", s.changePassword)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(string(domainUser.RoleAdmin)))
				r.Get("/audit", s.queryAudit)
				r.Get("/audit/{auditId}", s.getAudit)
				r.Get("/audit/{auditId}/verify", s.verifyAudit)
				r.Get("/entities/{entityType}/{entityId}/history", s.getEntityHistory)
			})
		})
	})

	return r
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start))
	})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
