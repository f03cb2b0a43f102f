/**
 * @description
 * This file sets up the HTTP router for the payments-review-service. It defines
 * the API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, panic recovery, CORS, and authentication.
 *
 * All review routes require an authenticated employee; the PATCH verbs mirror
 * the partial-update nature of the lifecycle transitions.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser review UI.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// PaymentReviewRoutes creates and returns a new router for the payments
// review surface.
func PaymentReviewRoutes(h *PaymentReviewHandlers, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require an authenticated employee.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))
		r.Use(RequireRole(RoleEmployee))

		r.Get("/getall", h.GetAllPaymentsHandler)
		r.Get("/payment/{id}", h.GetPaymentHandler)

		// Verification checks
		r.Post("/verify-account", h.VerifyAccountHandler)
		r.Post("/verify-swift", h.VerifySwiftHandler)

		// Lifecycle transitions
		r.Patch("/update-verification", h.UpdateVerificationHandler)
		r.Patch("/unverify", h.UnverifyHandler)
		r.Patch("/submit-to-swift", h.SubmitToSwiftHandler)
		r.Patch("/submit-multiple", h.BulkSubmitHandler)

		// Removal
		r.Delete("/delete", h.DeleteOneHandler)
		r.Post("/delete-multiple", h.DeleteManyHandler)
	})

	return r
}
