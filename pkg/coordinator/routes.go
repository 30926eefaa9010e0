package coordinator

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/network/polling"
)

// NewRouter makes all the HTTP routes of the signaling server.
//
//	GET    /health
//	GET    {ns}/ws
//	*      {ns}/poll
//	GET    {ns}/ice
//	GET    {ns}/rooms
//	GET    {ns}/rooms/{roomId}
//	POST   {ns}/rooms/{roomId}/events
func NewRouter(ns string, hub *Hub, poll *polling.Server, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	r.Route("/"+strings.Trim(ns, "/"), func(r chi.Router) {
		r.Get("/ws", hub.handleWebsocket)
		r.Handle("/poll", poll)
		r.Get("/ice", func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, http.StatusOK, hub.ice()) })

		r.Group(func(r chi.Router) {
			r.Use(bearer(token))
			r.Get("/rooms", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, hub.table.Rooms())
			})
			r.Get("/rooms/{roomId}", func(w http.ResponseWriter, r *http.Request) {
				rm, ok := hub.table.Find(chi.URLParam(r, "roomId"))
				if !ok {
					http.Error(w, "no such room", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, rm.Info())
			})
			r.Post("/rooms/{roomId}/events", func(w http.ResponseWriter, r *http.Request) {
				var notice api.RoomNotice
				if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				notice.Rid = chi.URLParam(r, "roomId")
				if err := notice.Validate(); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				writeJSON(w, http.StatusOK, api.NoticeResponse{Delivered: hub.notice(notice, "http")})
			})
		})
	})
	return r
}

// bearer checks the Authorization header against the token,
// an empty token lets everything through.
func bearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// notice pushes a server event into a room.
func (h *Hub) notice(n api.RoomNotice, source string) int {
	var payload any
	if len(n.Payload) > 0 {
		payload = n.Payload
	}
	delivered := h.table.Broadcast(n.Rid, n.T, payload)
	notices.WithLabelValues(source).Inc()
	h.log.Info().Str(logger.RoomField, n.Rid).Str("t", string(n.T)).Int("delivered", delivered).Str("source", source).Msg("Notice")
	return delivered
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
