package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/handlers"
	"github.com/wrenchbase/wrenchbase/internal/middleware"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

// RegisterRoutes registers all application routes under /api, grouped by
// role. Every group behind RequireAuth resolves the session once; the
// role gates read the role from the resolved session record.
func RegisterRoutes(
	router chi.Router,
	resolver auth.SessionResolver,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	userHandler *handlers.UserHandler,
	mechanicHandler *handlers.MechanicHandler,
	adminHandler *handlers.AdminHandler,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api", func(api chi.Router) {
		// Public auth endpoints, rate limited by IP
		api.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
		api.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)

		// Authenticated, any role
		api.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)
		})

		// Customer endpoints
		api.Route("/user", func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))
			r.Use(auth.RequireRole(models.RoleUser))

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Get("/mechanics", userHandler.ListMechanics)
			r.Get("/mechanics/{mechanicID}/reviews", userHandler.GetMechanicReviews)
			r.Post("/reviews", userHandler.SubmitReview)
			r.Get("/reviews", userHandler.ListOwnReviews)
		})

		// Mechanic endpoints
		api.Route("/mechanic", func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))
			r.Use(auth.RequireRole(models.RoleMechanic))

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Get("/location", mechanicHandler.GetLocation)
			r.Post("/location-requests", mechanicHandler.SubmitRequest)
			r.Get("/location-requests", mechanicHandler.ListRequests)
			r.Get("/notifications", mechanicHandler.ListNotifications)
			r.Post("/notifications/read", mechanicHandler.MarkNotificationsRead)
			r.Get("/reviews", mechanicHandler.ListReceivedReviews)
		})

		// Admin endpoints
		api.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Get("/location-requests/pending", adminHandler.ListPendingRequests)
			r.Get("/location-requests", adminHandler.ListAllRequests)
			r.Get("/location-requests/{requestID}/verify", adminHandler.VerifyRequest)
			r.Post("/location-requests/{requestID}/approve", adminHandler.ApproveRequest)
			r.Post("/location-requests/{requestID}/reject", adminHandler.RejectRequest)
			r.Delete("/mechanics/{mechanicID}/location", adminHandler.RemoveMechanicLocation)
			r.Get("/mechanics", adminHandler.ListMechanics)
			r.Get("/stats", adminHandler.GetStats)
		})
	})
}
