package http

import (
	"github.com/go-chi/chi/v5"

	"opname/api/login"
	"opname/api/masterdata"
	"opname/api/movements"
	"opname/api/opnameitems"
	"opname/api/reports"
	"opname/api/scans"
	"opname/api/sessions"
	"opname/infrastructure/auth"
)

// RegisterLoginRoutes registers login/logout routes. These sit outside the
// auth middleware so a fresh client can obtain a token.
func (s *Server) RegisterLoginRoutes() {
	s.router.Post("/login", login.LoginHandler(s.DB, s.SessionCache))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterOpnameRoutes registers the count session, scan, movement and
// report routes.
func (s *Server) RegisterOpnameRoutes(r chi.Router) chi.Router {
	r.Route("/stock-opname-sessions", func(r chi.Router) {
		r.Post("/", sessions.CreateSessionHandler(s.DB, s.Audit))
		r.Get("/", sessions.ListSessionsHandler(s.DB))
		r.Get("/{id}", sessions.GetSessionHandler(s.DB))
		r.Post("/{id}/start", sessions.StartSessionHandler(s.DB, s.Audit))
		r.Post("/{id}/scans", scans.SubmitBatchHandler(s.DB, s.Audit))
		r.Get("/{id}/items", opnameitems.ListItemsHandler(s.DB))
		r.Get("/{id}/items-with-rfid", opnameitems.ListItemsWithTagsHandler(s.DB))
		r.Get("/{id}/count-sheet.pdf", reports.CountSheetPDFHandler(s.DB))
		r.Get("/{id}/variance.csv", reports.VarianceCSVHandler(s.DB))
	})

	r.Post("/inventory-movements", movements.CreateMovementHandler(s.DB))
	r.Get("/inventory-movements", movements.ListMovementsHandler(s.DB))

	return r
}

// RegisterMasterDataRoutes registers location, item and tag management.
// Writes are admin-only.
func (s *Server) RegisterMasterDataRoutes(r chi.Router) chi.Router {
	r.Get("/locations", masterdata.ListLocationsHandler(s.DB))
	r.Get("/items", masterdata.ListItemsHandler(s.DB))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/locations", masterdata.CreateLocationHandler(s.DB))
		r.Post("/items", masterdata.CreateItemHandler(s.DB))
		r.Post("/items/import", masterdata.ImportItemsHandler(s.DB, s.Audit))
		r.Post("/rfid-tags", masterdata.RegisterTagHandler(s.DB))
		r.Post("/item-locations", masterdata.SetStockHandler(s.DB))
	})

	return r
}
