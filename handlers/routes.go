package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hoarding-server/middleware"
)

// NewRouter registers every route at the root and again under /api, which
// is where the mobile client points its base URL.
func NewRouter(authHandler *AuthHandler, hoardingHandler *HoardingHandler, parser middleware.TokenParser) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware())

	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)

	registerRoutes(r, authHandler, hoardingHandler, parser)
	registerRoutes(r.PathPrefix("/api").Subrouter(), authHandler, hoardingHandler, parser)
	return r
}

func registerRoutes(r *mux.Router, authHandler *AuthHandler, hoardingHandler *HoardingHandler, parser middleware.TokenParser) {
	protect := middleware.JWTMiddleware(parser)

	// Auth routes
	r.HandleFunc("/auth/register", authHandler.RegisterUser).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.LoginUser).Methods(http.MethodPost)
	r.Handle("/auth/me", protect(http.HandlerFunc(authHandler.CurrentUser))).Methods(http.MethodGet)

	// Hoarding routes; /nearby must precede /{id}
	r.Handle("/hoardings/add", protect(http.HandlerFunc(hoardingHandler.AddHoarding))).Methods(http.MethodPost)
	r.HandleFunc("/hoardings/nearby", hoardingHandler.GetNearbyHoardings).Methods(http.MethodGet)
	r.HandleFunc("/hoardings", hoardingHandler.GetHoardings).Methods(http.MethodGet)
	r.HandleFunc("/hoardings/{id}", hoardingHandler.GetHoarding).Methods(http.MethodGet)
	r.Handle("/hoardings/{id}", protect(http.HandlerFunc(hoardingHandler.UpdateHoarding))).Methods(http.MethodPut)
	r.Handle("/hoardings/{id}", protect(http.HandlerFunc(hoardingHandler.DeleteHoarding))).Methods(http.MethodDelete)
}
