package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/formations", handler.ListFormations)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/snapshot", handler.GetSnapshot)
	mux.HandleFunc("GET /v1/matches/{matchID}/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/matches/{matchID}/lineups/{teamID}", handler.GetLineup)
	// Stream is read-only; browsers cannot attach an Authorization header to
	// a websocket handshake.
	mux.HandleFunc("GET /v1/matches/{matchID}/stream", handler.StreamMatch)
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("POST /v1/matches/{matchID}/clock/first-half", RequireAuth(verifier, http.HandlerFunc(handler.StartFirstHalf)))
	mux.Handle("POST /v1/matches/{matchID}/clock/halftime", RequireAuth(verifier, http.HandlerFunc(handler.StartHalftime)))
	mux.Handle("POST /v1/matches/{matchID}/clock/second-half", RequireAuth(verifier, http.HandlerFunc(handler.StartSecondHalf)))
	mux.Handle("POST /v1/matches/{matchID}/clock/end", RequireAuth(verifier, http.HandlerFunc(handler.EndMatch)))
	mux.Handle("POST /v1/matches/{matchID}/goals", RequireAuth(verifier, http.HandlerFunc(handler.AppendGoal)))
	mux.Handle("POST /v1/matches/{matchID}/messages", RequireAuth(verifier, http.HandlerFunc(handler.AppendMessage)))
	mux.Handle("DELETE /v1/events/{eventID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteEvent)))
	mux.Handle("PUT /v1/matches/{matchID}/lineups/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.SetLineup)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileScoresJob)))
}
