package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"surveyflow/internal/service"
)

type contextKey string

const (
	SessionIDKey contextKey = "sessionId"
	SurveyIDKey  contextKey = "surveyId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireSession validates a session JWT from the Authorization header or
// the token query param, and checks it was issued for the session in the path.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateSessionToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		if id, ok := mux.Vars(r)["sessionId"]; ok && id != claims.SessionID {
			http.Error(w, `{"error":"token not valid for this session"}`, http.StatusForbidden)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
		ctx = context.WithValue(ctx, SurveyIDKey, claims.SurveyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts session ID from context
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(SessionIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetSurveyID extracts survey ID from context
func GetSurveyID(ctx context.Context) int {
	if v := ctx.Value(SurveyIDKey); v != nil {
		return v.(int)
	}
	return 0
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
