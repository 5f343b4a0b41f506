package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewServer builds the router around an already wired Server.
func NewServer(s *Server) *Server {
	s.Router = chi.NewRouter()
	s.routes()
	return s
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	r := s.Router
	r.Handle("/metrics", s.MetricsHandler)
	r.Method(http.MethodGet, "/health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	r.Method(http.MethodPost, "/players", Chain(s.UpsertPlayersHandler(), paramsMiddleware))
	r.Method(http.MethodGet, "/players/{playerID}/badges", Chain(s.ListBadgesHandler(), paramsMiddleware))

	r.Method(http.MethodPost, "/sessions", Chain(s.CreateSessionHandler(), paramsMiddleware))
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Method(http.MethodGet, "/", Chain(s.GetSessionHandler(), paramsMiddleware))
		r.Method(http.MethodGet, "/attendees", Chain(s.ListAttendeesHandler(), paramsMiddleware))
		r.Method(http.MethodPut, "/attendees/{playerID}", Chain(s.SetPresenceHandler(true), paramsMiddleware))
		r.Method(http.MethodDelete, "/attendees/{playerID}", Chain(s.SetPresenceHandler(false), paramsMiddleware))
		r.Method(http.MethodPost, "/attendance/playtomic", Chain(s.ImportAttendanceHandler(), paramsMiddleware))

		r.Method(http.MethodGet, "/tournament", Chain(s.GetTournamentHandler(), paramsMiddleware))
		r.Method(http.MethodPost, "/tournament", Chain(s.SetupTournamentHandler(), paramsMiddleware))
		r.Method(http.MethodPost, "/tournament/end", Chain(s.EndTournamentHandler(), paramsMiddleware))
		r.Method(http.MethodPost, "/tournaments/{tournamentID}/matches/{matchID}/games", Chain(s.RecordGameHandler(), paramsMiddleware))
	})

	r.Method(http.MethodPost, "/pubsub/{topic}", Chain(s.PubSubPushHandler(), paramsMiddleware))
	if s.InngestHandler != nil {
		r.Handle("/api/inngest", s.InngestHandler)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
