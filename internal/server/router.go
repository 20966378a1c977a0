package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API under prefix and serves mediaDir under /media.
//
// Trailing slashes are stripped, so /category/3 and /category/3/ match the same route.
func NewRouter(h *Handlers, prefix, mediaDir string, logger *log.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(Logger(logger))
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	r.Route(prefix, func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Post("/create_category", h.CreateCategory)
		r.Get("/category/{id:[0-9]+}", h.GetCategory)
		r.Put("/category/{id:[0-9]+}", h.UpdateCategory)
		r.Get("/delete_category/{id:[0-9]+}", h.CategoryDeleteImpact)
		r.Delete("/delete_category/{id:[0-9]+}", h.DeleteCategory)

		r.Post("/create_subcategory", h.CreateSubcategory)
		r.Get("/subcategory/{id:[0-9]+}", h.GetSubcategory)
		r.Put("/subcategory/{id:[0-9]+}", h.UpdateSubcategory)
		r.Get("/delete_subcategory/{id:[0-9]+}", h.SubcategoryDeleteImpact)
		r.Delete("/delete_subcategory/{id:[0-9]+}", h.DeleteSubcategory)

		r.Post("/create_soundtrack", h.CreateSoundtrack)
		r.Put("/soundtrack/{id:[0-9]+}", h.UpdateSoundtrack)
		r.Delete("/delete_soundtrack/{id:[0-9]+}", h.DeleteSoundtrack)
	})

	return r
}
