package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/raceclub/portal/handlers"
	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Club         *handlers.ClubHandler
	Event        *handlers.EventHandler
	Membership   *handlers.MembershipHandler
	Session      *handlers.SessionHandler
	Driver       *handlers.DriverHandler
	Nomination   *handlers.NominationHandler
	Championship *handlers.ChampionshipHandler
	WebSocket    *handlers.WebSocketHandler
}

// SetupRoutes wires the public, member and admin route groups.
func SetupRoutes(h Handlers, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Public surface.
	r.Post("/auth/register", h.Auth.Register)
	r.Post("/auth/login", h.Auth.Login)

	r.Route("/clubs/{slug}", func(r chi.Router) {
		r.Get("/", h.Club.GetBySlug)
		r.Get("/tracks", h.Club.ListTracks)
		r.Get("/events", h.Event.List)
		r.Get("/calendar", h.Event.Calendar)
		r.Get("/championships", h.Championship.ListByClub)
	})
	r.Get("/tracks/{trackID}/classes", h.Club.ListTrackClasses)
	r.Get("/events/{eventID}", h.Event.Get)
	r.Get("/championships/{championshipID}", h.Championship.Get)

	r.Get("/ws/events/{eventID}", h.WebSocket.ServeEventRoom)

	// Signed-in members.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/session", h.Session.Get)

		r.Route("/membership", func(r chi.Router) {
			r.Get("/", h.Membership.GetState)
			r.Post("/join", h.Membership.Join)
			r.Post("/renew", h.Membership.Renew)
			r.Post("/upgrade", h.Membership.Upgrade)
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", h.Driver.List)
			r.Post("/", h.Driver.AddFamilyDriver)
			r.Delete("/{driverID}", h.Driver.RemoveFamilyDriver)
			r.Get("/numbers", h.Driver.ListNumbers)
			r.Post("/numbers", h.Driver.AddNumber)
			r.Delete("/numbers/{numberID}", h.Driver.RemoveNumber)
		})

		r.Get("/events/{eventID}/nomination-entry", h.Nomination.StartEntry)
		r.Post("/events/{eventID}/nominations", h.Nomination.Submit)
	})

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(string(models.RoleAdmin)))

		r.Post("/admin/events", h.Event.Create)
		r.Put("/admin/events/{eventID}", h.Event.Update)
		r.Post("/admin/events/{eventID}/duplicate", h.Event.Duplicate)
		r.Get("/admin/events/{eventID}/classes", h.Event.GetClassList)
		r.Post("/admin/events/{eventID}/classes/toggle", h.Event.ToggleClass)
		r.Post("/admin/events/{eventID}/classes/reorder", h.Event.ReorderClass)
		r.Post("/admin/events/{eventID}/logo", h.Event.UploadLogo)
		r.Get("/admin/events/{eventID}/nominations", h.Nomination.ListByEvent)

		r.Post("/admin/championships", h.Championship.Create)
		r.Put("/admin/championships/{championshipID}", h.Championship.Update)
		r.Delete("/admin/championships/{championshipID}", h.Championship.Delete)

		r.Post("/admin/club/logo", h.Club.UploadLogo)
	})

	return r
}
