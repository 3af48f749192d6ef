package handlers

import "net/http"

// RegisterRoutes mounts the game, audio and parent API on mux
func RegisterRoutes(mux *http.ServeMux, mw *Middleware, game *GameHandler, audio *AudioHandler, parent *ParentHandler) {
	mux.HandleFunc("GET /api/catalog", game.Catalog)
	mux.HandleFunc("GET /api/game", game.State)
	mux.HandleFunc("POST /api/game/start", game.Start)
	mux.HandleFunc("POST /api/game/next", game.Next)
	mux.HandleFunc("POST /api/game/mode", game.Mode)
	mux.HandleFunc("POST /api/game/level", game.Level)
	mux.HandleFunc("POST /api/game/new-session", game.NewSession)
	mux.HandleFunc("POST /api/practice/place", game.Place)

	mux.HandleFunc("GET /api/audio", audio.Pronounce)

	mux.HandleFunc("POST /api/parent/login", mw.RateLimit(parent.Login))
	mux.HandleFunc("POST /api/parent/logout", parent.Logout)
	mux.HandleFunc("GET /api/parent/dashboard", mw.RequireParent(parent.Dashboard))
	mux.HandleFunc("PATCH /api/parent/settings", mw.RequireParent(mw.CSRFProtect(parent.UpdateSettings)))
	mux.HandleFunc("POST /api/parent/words/{id}/toggle", mw.RequireParent(mw.CSRFProtect(parent.ToggleWord)))
	mux.HandleFunc("POST /api/parent/reset", mw.RequireParent(mw.CSRFProtect(parent.Reset)))
	mux.HandleFunc("POST /api/parent/report", mw.RequireParent(mw.CSRFProtect(parent.Report)))
}
