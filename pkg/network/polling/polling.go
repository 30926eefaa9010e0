// Package polling implements a long-polling fallback transport for the
// clients that can't keep a websocket open.
//
//	POST   /poll          opens a session, returns {"sid": "..."}
//	GET    /poll?sid=..   waits for the server messages, returns a JSON array
//	POST   /poll?sid=..   sends a client message or a JSON array of them
//	DELETE /poll?sid=..   closes the session
package polling

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/logger"
)

type Options struct {
	// Wait is the longest time a poll request is held open.
	Wait time.Duration
	// Idle is the time after which a session without requests is closed.
	Idle           time.Duration
	QueueSize      int
	MaxMessageSize int64
}

var DefaultOptions = Options{Wait: 25 * time.Second, Idle: 60 * time.Second, QueueSize: 256, MaxMessageSize: 64 * 1024}

var ErrNoSession = errors.New("no such session")

type Server struct {
	opts     Options
	sessions *com.Map[string, *Session]
	onOpen   func(*Session)
	log      *logger.Logger

	stop chan struct{}
	done chan struct{}
}

type openResponse struct {
	Sid string `json:"sid"`
}

// NewServer makes the polling server, onOpen is called with each new session
// before its id is returned to the client.
func NewServer(opts Options, onOpen func(*Session), log *logger.Logger) *Server {
	if opts.Wait <= 0 {
		opts.Wait = DefaultOptions.Wait
	}
	if opts.Idle <= 0 {
		opts.Idle = DefaultOptions.Idle
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultOptions.QueueSize
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultOptions.MaxMessageSize
	}
	return &Server{
		opts:     opts,
		sessions: com.NewMap[string, *Session](),
		onOpen:   onOpen,
		log:      log.Module("poll"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sid")
	switch {
	case r.Method == http.MethodPost && sid == "":
		s.open(w, r)
	case r.Method == http.MethodGet:
		s.poll(w, r, sid)
	case r.Method == http.MethodPost:
		s.send(w, r, sid)
	case r.Method == http.MethodDelete:
		s.close(w, sid)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.NewV4()
	if err != nil {
		s.log.Error().Err(err).Msg("session id")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := newSession(id.String(), s.opts.QueueSize, r.RemoteAddr)
	sess.release = func() { s.sessions.RemoveByKey(sess.sid) }
	s.sessions.Put(sess.sid, sess)
	if s.onOpen != nil {
		s.onOpen(sess)
	}
	s.log.Debug().Str(logger.ConnectionField, sess.id.Short()).Msg("Session opened")
	writeJSON(w, http.StatusOK, openResponse{Sid: sess.sid})
}

func (s *Server) poll(w http.ResponseWriter, r *http.Request, sid string) {
	sess, err := s.sessions.Find(sid)
	if err != nil {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}
	messages := sess.wait(s.opts.Wait, r.Context().Done())
	if len(messages) == 0 && sess.isClosed() {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}
	out := make([]json.RawMessage, len(messages))
	for i, m := range messages {
		out[i] = m
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) send(w http.ResponseWriter, r *http.Request, sid string) {
	sess, err := s.sessions.Find(sid)
	if err != nil {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxMessageSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	messages := [][]byte{body}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		messages = messages[:0]
		for _, m := range batch {
			messages = append(messages, m)
		}
	}
	for _, m := range messages {
		if !sess.handle(m) {
			http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) close(w http.ResponseWriter, sid string) {
	sess, ok := s.sessions.Pop(sid)
	if !ok {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}
	sess.Close()
	w.WriteHeader(http.StatusNoContent)
}

// Len returns the number of the open sessions.
func (s *Server) Len() int { return s.sessions.Len() }

// Run starts the idle session reaper.
func (s *Server) Run() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.opts.Idle / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.reap(time.Now().Add(-s.opts.Idle))
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Server) reap(deadline time.Time) {
	var stale []*Session
	s.sessions.ForEach(func(sess *Session) {
		if sess.idle(deadline) {
			stale = append(stale, sess)
		}
	})
	for _, sess := range stale {
		if s.sessions.RemoveIf(sess.sid, func(v *Session) bool { return v.idle(deadline) }) {
			s.log.Debug().Str(logger.ConnectionField, sess.id.Short()).Msg("Session expired")
			sess.Close()
		}
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	for _, sess := range s.sessions.Values() {
		if _, ok := s.sessions.Pop(sess.sid); ok {
			sess.Close()
		}
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) String() string { return "polling" }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
