package routes

import (
	"net/http"

	"github.com/pawmate/dogwalk-marketplace/internal/api/handlers"
	"github.com/pawmate/dogwalk-marketplace/internal/api/middleware"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler        *handlers.UserHandler
	reservationHandler *handlers.ReservationHandler
	petHandler         *handlers.PetHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	userHandler *handlers.UserHandler,
	reservationHandler *handlers.ReservationHandler,
	petHandler *handlers.PetHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		userHandler:        userHandler,
		reservationHandler: reservationHandler,
		petHandler:         petHandler,
		cacheMiddleware:    cacheMiddleware,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// User endpoints
	r.mux.HandleFunc("GET /users", r.userHandler.ListUsers)
	r.mux.HandleFunc("GET /users/search", r.userHandler.SearchUsers)
	r.mux.HandleFunc("GET /users/match/{actorId}", r.userHandler.MatchCandidates)

	r.mux.HandleFunc("POST /user", r.userHandler.Register)
	r.mux.HandleFunc("GET /user/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("GET /user/{email}/{password}", r.userHandler.Login)
	r.mux.HandleFunc("PUT /user/{id}", r.userHandler.UpdateUser)
	r.mux.HandleFunc("PUT /user/{id}/location", r.userHandler.UpdateLocation)
	r.mux.HandleFunc("PUT /user/onlineStatus", r.userHandler.UpdateOnlineStatus)
	r.mux.HandleFunc("PUT /user/walkers/{id}/score", r.userHandler.UpdateWalkerScore)

	// Reservation endpoints
	r.mux.HandleFunc("POST /reservations", r.reservationHandler.CreateReservation)
	r.mux.HandleFunc("GET /reservations/{id}", r.reservationHandler.GetReservation)
	r.mux.HandleFunc("PUT /reservations/{id}", r.reservationHandler.UpdateStatus)
	r.mux.HandleFunc("POST /reservations/{id}/reviews", r.reservationHandler.SubmitReview)

	// Per-party reservation listings; literal segments take precedence over
	// the /user/{id} wildcards above.
	r.mux.HandleFunc("GET /user/reservations/{id}", r.reservationHandler.ListForUser)
	r.mux.HandleFunc("GET /user/walker/reservations/{id}", r.reservationHandler.ListForWalker)

	// Pet endpoints
	r.mux.HandleFunc("GET /pets", r.petHandler.ListPets)
	r.mux.HandleFunc("GET /user/{id}/pets", r.petHandler.ListUserPets)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
