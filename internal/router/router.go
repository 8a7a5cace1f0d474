// Package router wires the handlers onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Home    *handler.HomeHandler
	Venues  *handler.VenueHandler
	Artists *handler.ArtistHandler
	Shows   *handler.ShowHandler
	Health  echo.HandlerFunc
}

// Register mounts the page and command routes.  pages (typically the page
// cache) wraps only GET /shows: every other page splits shows into past and
// upcoming at the request's own instant, so its body is not reusable.
func Register(e *echo.Echo, h Handlers, pages ...echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)
	e.GET("/", h.Home.Index)

	v := e.Group("/venues")
	v.GET("", h.Venues.List)
	v.POST("/search", h.Venues.Search)
	v.GET("/create", h.Venues.CreateForm)
	v.POST("/create", h.Venues.Create)
	v.GET("/:id", h.Venues.Show)
	v.DELETE("/:id", h.Venues.Delete)
	v.GET("/:id/edit", h.Venues.EditForm)
	v.POST("/:id/edit", h.Venues.Edit)

	a := e.Group("/artists")
	a.GET("", h.Artists.List)
	a.POST("/search", h.Artists.Search)
	a.GET("/create", h.Artists.CreateForm)
	a.POST("/create", h.Artists.Create)
	a.GET("/:id", h.Artists.Show)
	a.DELETE("/:id", h.Artists.Delete)
	a.GET("/:id/edit", h.Artists.EditForm)
	a.POST("/:id/edit", h.Artists.Edit)

	s := e.Group("/shows")
	s.GET("", h.Shows.List, pages...)
	s.GET("/create", h.Shows.CreateForm)
	s.POST("/create", h.Shows.Create)
}
