package routes

import (
	"bandhub/artists"
	"bandhub/ratelim"

	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper builds the full route table.
func RoutesWrapper(h *artists.Handler, rateLimiter *ratelim.RateLimiter, uploadDir string) *httprouter.Router {
	router := httprouter.New()
	AddUtilityRoutes(router)
	AddStaticRoutes(router, uploadDir)
	AddArtistRoutes(router, h, rateLimiter)
	return router
}
