// Package www is the HTTP surface: a JSON API behind cookie sessions,
// with admin-only routes for user management, export and maintenance.
package www

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"partsdesk/auth"
	"partsdesk/config"
	"partsdesk/export"
	"partsdesk/inventory"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	cfg      *config.Config
	inv      *inventory.Service
	users    *auth.Service
	sessions *sessionStore
	maint    *export.MaintenanceRunner
	log      *zap.SugaredLogger

	// Single-slot undo buffer per session. Lost on restart, which is
	// acceptable for a last-deletion convenience.
	undoMu sync.Mutex
	undo   map[string]*inventory.Deletion
}

// NewRouter wires the chi router over the service layer.
func NewRouter(cfg *config.Config, inv *inventory.Service, users *auth.Service, log *zap.SugaredLogger) http.Handler {
	h := &Handlers{
		cfg:      cfg,
		inv:      inv,
		users:    users,
		sessions: newSessionStore(cfg.Web.SessionSecret, cfg.Web.SessionTimeout),
		maint:    export.NewMaintenanceRunner(inv.DB()),
		log:      log,
		undo:     make(map[string]*inventory.Deletion),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/api/login", h.apiLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Post("/logout", h.apiLogout)
		r.Get("/session", h.apiSession)

		// Clients
		r.Get("/clients", h.apiListClients)
		r.Post("/clients", h.apiCreateClient)
		r.Get("/clients/{phone}", h.apiClientSnapshot)
		r.Put("/clients/{phone}", h.apiUpdateClient)
		r.Delete("/clients/{phone}", h.apiDeleteClient)
		r.Get("/clients/{phone}/vins", h.apiListClientVINs)
		r.Get("/clients/{phone}/loose-parts", h.apiListLooseParts)

		// Vehicles
		r.Post("/vins", h.apiCreateVIN)
		r.Get("/vins/{vin}", h.apiVINDetails)
		r.Put("/vins/{vin}", h.apiUpdateVIN)
		r.Delete("/vins/{vin}", h.apiDeleteVIN)
		r.Get("/vins/{vin}/parts", h.apiListVINParts)

		// Parts and supplier quotes
		r.Get("/parts", h.apiListParts)
		r.Post("/parts", h.apiCreatePart)
		r.Get("/parts/{id}", h.apiPartDetails)
		r.Put("/parts/{id}", h.apiUpdatePart)
		r.Delete("/parts/{id}", h.apiDeletePart)
		r.Post("/parts/{id}/move", h.apiMovePart)
		r.Post("/parts/{id}/suppliers", h.apiCreateSupplier)
		r.Put("/suppliers/{id}", h.apiUpdateSupplier)
		r.Delete("/suppliers/{id}", h.apiDeleteSupplier)

		// Search, undo, documents
		r.Get("/search", h.apiSearch)
		r.Get("/undo", h.apiUndoStatus)
		r.Post("/undo", h.apiUndo)
		r.Post("/documents", h.apiGenerateDocument)

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(h.adminMiddleware)

			r.Get("/users", h.apiListUsers)
			r.Post("/users", h.apiCreateUser)
			r.Put("/users/{username}/password", h.apiUpdateUserPassword)
			r.Put("/users/{username}/role", h.apiUpdateUserRole)
			r.Put("/users/{username}/active", h.apiSetUserActive)

			r.Get("/activity", h.apiActivityLogs)
			r.Post("/export", h.apiExport)
			r.Get("/backups", h.apiListBackups)
			r.Post("/backups", h.apiBackup)
			r.Post("/maintenance", h.apiMaintenance)
		})
	})

	return r
}

// authMiddleware refreshes the inactivity clock and rejects expired or
// missing sessions. When expiry is inside the warning window the
// remaining seconds go out in X-Session-Expires-In so clients can warn.
func (h *Handlers) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, remaining, ok := h.sessions.touch(w, r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if remaining <= h.cfg.Web.WarningWindow {
			w.Header().Set("X-Session-Expires-In", strconv.Itoa(int(remaining.Seconds())))
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), info)))
	})
}

func (h *Handlers) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()).Role != "admin" {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
