package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seywald/marque/internal/linkservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer-token ownership is enforced.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *linkservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(OwnerMiddleware(authEnabled, token))

	r.Get("/info", h.GetInfo)

	// Links CRUD and lookups.
	r.Get("/links", h.ListLinks)
	r.Post("/links", h.CreateLink)
	r.Get("/links/hash/{hash}", h.GetLinkByHash)
	r.Get("/links/{id:[0-9]+}", h.GetLink)
	r.Put("/links/{id:[0-9]+}", h.UpdateLink)
	r.Delete("/links/{id:[0-9]+}", h.DeleteLink)

	// Tags.
	r.Get("/tags", h.ListTags)
	r.Put("/tags/{tag}", h.RenameTag)
	r.Delete("/tags/{tag}", h.DeleteTag)

	// Daily pages.
	r.Get("/daily", h.GetDaily)
	r.Get("/days", h.ListDays)

	// Audit log.
	r.Get("/history", h.GetHistory)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
