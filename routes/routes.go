package routes

import (
	"wayfare/admin"
	"wayfare/auth"
	"wayfare/citymeta"
	"wayfare/events"
	"wayfare/itinerary"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/organization"
	"wayfare/ratelim"
	"wayfare/traveler"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the constructed handler sets into route registration.
type Deps struct {
	Itineraries *itinerary.Handlers
	Cities      *citymeta.Handlers
	RateLimiter *ratelim.RateLimiter
}

func RoutesWrapper(router *httprouter.Router, deps Deps) {
	AddAuthRoutes(router, deps.RateLimiter)
	AddTravelerRoutes(router)
	AddOrganizationRoutes(router)
	AddEventsRoutes(router)
	AddItineraryRoutes(router, deps.Itineraries)
	AddCityRoutes(router, deps.Cities)
	AddAdminRoutes(router)
}

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/register/traveler", rateLimiter.Limit(auth.RegisterTraveler))
	router.POST("/api/auth/register/organization", rateLimiter.Limit(auth.RegisterOrganization))
	router.POST("/api/auth/login", rateLimiter.Limit(auth.Login))
}

func AddTravelerRoutes(router *httprouter.Router) {
	asTraveler := middleware.RequireRoles(models.RoleTraveler)
	router.GET("/api/travelers/me", middleware.Authenticate(asTraveler(traveler.GetMe)))
	router.PUT("/api/travelers/me", middleware.Authenticate(asTraveler(traveler.UpdateMe)))
}

func AddOrganizationRoutes(router *httprouter.Router) {
	asOrg := middleware.RequireRoles(models.RoleOrganization)
	router.GET("/api/organizations/me", middleware.Authenticate(asOrg(organization.GetMe)))
	router.PUT("/api/organizations/me", middleware.Authenticate(asOrg(organization.UpdateMe)))
	router.DELETE("/api/organizations/me", middleware.Authenticate(asOrg(organization.DeleteMe)))
}

func AddEventsRoutes(router *httprouter.Router) {
	asOrg := middleware.RequireRoles(models.RoleOrganization)
	router.GET("/api/events", events.List)
	router.GET("/api/events/:id", events.Get)
	router.POST("/api/events", middleware.Authenticate(asOrg(events.Create)))
	router.PUT("/api/events/:id", middleware.Authenticate(asOrg(events.Update)))
	router.DELETE("/api/events/:id", middleware.Authenticate(asOrg(events.Delete)))
}

func AddItineraryRoutes(router *httprouter.Router, h *itinerary.Handlers) {
	asTraveler := middleware.RequireRoles(models.RoleTraveler)

	router.POST("/api/itineraries/requests", middleware.Authenticate(asTraveler(h.SubmitRequest)))
	router.GET("/api/itineraries/requests/:id", middleware.Authenticate(asTraveler(h.GetRequest)))
	router.POST("/api/itineraries/requests/:id/promote", middleware.Authenticate(asTraveler(h.PromoteRequest)))

	router.GET("/api/itineraries", middleware.Authenticate(asTraveler(h.ListMine)))
	router.GET("/api/itineraries/completed", middleware.Authenticate(asTraveler(h.ListCompleted)))
	router.GET("/api/itineraries/shared", middleware.Authenticate(asTraveler(h.ListSharedWithMe)))
	router.GET("/api/itineraries/saved", middleware.Authenticate(asTraveler(h.ListSaved)))
	router.GET("/api/itineraries/spotlight", h.MostSaved)
	router.POST("/api/itineraries/search", h.Search)

	// Reads and per-id actions live under /all/:id so the static listing
	// paths above never collide with the id wildcard.
	router.GET("/api/itineraries/all/:id", middleware.OptionalAuth(h.Get))
	router.GET("/api/itineraries/all/:id/pdf", middleware.OptionalAuth(h.Download))
	router.PUT("/api/itineraries/all/:id", middleware.Authenticate(asTraveler(h.Update)))
	router.DELETE("/api/itineraries/all/:id", middleware.Authenticate(asTraveler(h.Delete)))

	router.POST("/api/itineraries/share", middleware.Authenticate(asTraveler(h.Share)))
	router.POST("/api/itineraries/publish", middleware.Authenticate(asTraveler(h.Publish)))
	router.POST("/api/itineraries/duplicate", middleware.Authenticate(asTraveler(h.Duplicate)))
	router.POST("/api/itineraries/all/:id/complete", middleware.Authenticate(asTraveler(h.Complete)))
	router.POST("/api/itineraries/all/:id/save", middleware.Authenticate(asTraveler(h.Save)))
	router.DELETE("/api/itineraries/all/:id/save", middleware.Authenticate(asTraveler(h.Unsave)))
}

func AddCityRoutes(router *httprouter.Router, h *citymeta.Handlers) {
	router.GET("/api/cities/:city", h.Get)
}

func AddAdminRoutes(router *httprouter.Router) {
	asAdmin := middleware.RequireRoles(models.RoleAdmin)
	router.GET("/api/admin/config", middleware.Authenticate(asAdmin(admin.GetConfig)))
	router.PUT("/api/admin/config/itinerary-generation", middleware.Authenticate(asAdmin(admin.SetItineraryGeneration)))
}
