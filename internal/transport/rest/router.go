package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "surveyflow/docs"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/handler"
	"surveyflow/internal/transport/rest/middleware"
	"surveyflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SurveyService  *service.SurveyService
	SessionService *service.SessionService
	WSHub          *ws.Hub
	AllowedOrigins []string
	Log            *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Initialize handlers
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.AllowedOrigins, log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(log.Named("http")))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/surveys/{surveyId:[0-9]+}/pages", surveyHandler.Pages).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId:[0-9]+}/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Session routes (require the session's token)
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Discard).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/answers/{questionId:[0-9]+}", sessionHandler.Answer).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/sessions/{sessionId}/back", sessionHandler.Back).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowed []string) mux.MiddlewareFunc {
	set := make(map[string]bool, len(allowed))
	wildcard := len(allowed) == 0
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case set[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
