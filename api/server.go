/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Auth:       JWT bearer tokens on everything except login/reset

ROUTE GROUPS:
  /api/login, /api/password/*   Credential gate (public except change)
  /api/students/*               Records, payments, financials
  /api/seats/*, /api/halls      The grid
  /api/shifts, /api/attendance  Daily operation
  /api/settings                 Owner preferences
  /api/summary, /api/export/*   Accounts
  /api/activities, /api/backup  Audit trail and state export

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public: the credential gate itself
		r.Post("/login", h.Login)
		r.Get("/password/question", h.SecurityQuestion)
		r.Post("/password/reset", h.ResetPassword)

		// Everything else requires a token
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Post("/password", h.ChangePassword)

			r.Route("/students", func(r chi.Router) {
				r.Get("/", h.ListStudents)
				r.Post("/", h.CreateStudent)
				r.Route("/{roll}", func(r chi.Router) {
					r.Get("/", h.GetStudent)
					r.Put("/", h.UpdateStudent)
					r.Delete("/", h.DeleteStudent)
					r.Get("/financials", h.GetFinancials)
					r.Get("/message", h.DuesMessage)
					r.Post("/fee", h.ChangeFee)
					r.Post("/deactivate", h.DeactivateStudent)
					r.Post("/reactivate", h.ReactivateStudent)
					r.Post("/reset", h.ResetStudent)
					r.Route("/payments", func(r chi.Router) {
						r.Post("/", h.AddPayment)
						r.Put("/{id}", h.UpdatePayment)
						r.Delete("/{id}", h.DeletePayment)
					})
				})
			})

			r.Route("/seats", func(r chi.Router) {
				r.Get("/", h.ListSeats)
				r.Post("/{id}/assign", h.AssignSeat)
				r.Post("/{id}/release", h.ReleaseSeat)
			})

			r.Route("/halls", func(r chi.Router) {
				r.Get("/", h.GetHalls)
				r.Put("/", h.ConfigureHalls)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.ListShifts)
				r.Put("/", h.SaveShifts)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.GetAttendance)
				r.Post("/", h.MarkAttendance)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.GetSettings)
				r.Put("/", h.UpdateSettings)
			})

			r.Get("/summary", h.GetSummary)
			r.Get("/export/students.csv", h.ExportStudentsCSV)
			r.Get("/activities", h.ListActivities)
			r.Post("/backup", h.TriggerBackup)
		})
	})

	return r
}
