package polling

import (
	"sync"
	"time"

	"github.com/teleconsult/signal/pkg/com"
)

// Session is a virtual connection made of a sequence of HTTP requests.
type Session struct {
	id  com.Uid
	sid string
	max int

	mu       sync.Mutex
	queue    [][]byte
	lastSeen time.Time
	polls    int

	// serializes the inbound message processing
	dispatch  sync.Mutex
	onMessage func([]byte)
	onClose   func()

	wake    chan struct{}
	release func()
	once    sync.Once
	done    chan struct{}
	addr    string
}

func newSession(sid string, max int, addr string) *Session {
	return &Session{
		id:       com.NewUid(),
		sid:      sid,
		max:      max,
		lastSeen: time.Now(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		addr:     addr,
	}
}

func (s *Session) Id() com.Uid        { return s.id }
func (s *Session) Sid() string        { return s.sid }
func (s *Session) RemoteAddr() string { return s.addr }

func (s *Session) Listen(onMessage func([]byte), onClose func()) {
	s.dispatch.Lock()
	s.onMessage, s.onClose = onMessage, onClose
	s.dispatch.Unlock()
}

// Write puts the message into the outbound queue.
// Messages over the queue limit are dropped.
func (s *Session) Write(data []byte) bool {
	s.mu.Lock()
	if s.isClosed() || len(s.queue) >= s.max {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, data)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Close ends the session. It must not be called from the message callback.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.release()
		}
		s.dispatch.Lock()
		defer s.dispatch.Unlock()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// handle runs the message callback, one message at a time.
func (s *Session) handle(data []byte) bool {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	if s.isClosed() || s.onMessage == nil {
		return false
	}
	s.touch()
	s.onMessage(data)
	return true
}

// drain takes all the queued messages.
func (s *Session) drain() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

// wait blocks until there is something to send, the timeout
// or the session close, then returns the queued messages.
func (s *Session) wait(timeout time.Duration, cancel <-chan struct{}) [][]byte {
	s.mu.Lock()
	s.polls++
	s.lastSeen = time.Now()
	n := len(s.queue)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.polls--
		s.lastSeen = time.Now()
		s.mu.Unlock()
	}()

	if n == 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-s.wake:
		case <-t.C:
		case <-s.done:
		case <-cancel:
		}
	}
	return s.drain()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// idle tells whether the session had no requests since the time.
func (s *Session) idle(since time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls == 0 && s.lastSeen.Before(since)
}
