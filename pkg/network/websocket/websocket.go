package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/logger"
)

const (
	pingTime  = pongTime * 9 / 10
	pongTime  = 60 * time.Second
	writeWait = 10 * time.Second
)

type Options struct {
	MaxMessageSize int64
	QueueSize      int
	PingPong       bool
}

var DefaultOptions = Options{MaxMessageSize: 64 * 1024, QueueSize: 256, PingPong: true}

// WS is a server side websocket connection.
type WS struct {
	id   com.Uid
	conn deadlinedConn
	send chan []byte
	opts Options

	onMessage func([]byte)
	onClose   func()

	mu        sync.Mutex
	listening bool
	once      sync.Once
	sockOnce  sync.Once
	done      chan struct{}
	log       *logger.Logger
}

// NewUpgrader makes an upgrader accepting any origin,
// the auth is done by the surrounding application.
func NewUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		WriteBufferPool: &sync.Pool{},
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

// NewServer upgrades the HTTP request into a websocket connection.
func NewServer(w http.ResponseWriter, r *http.Request, up *websocket.Upgrader, opts Options, log *logger.Logger) (*WS, error) {
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewServerWithConn(conn, opts, log), nil
}

func NewServerWithConn(conn *websocket.Conn, opts Options, log *logger.Logger) *WS {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultOptions.QueueSize
	}
	id := com.NewUid()
	return &WS{
		id:   id,
		conn: deadlinedConn{sock: conn, wt: writeWait},
		send: make(chan []byte, opts.QueueSize),
		opts: opts,
		done: make(chan struct{}),
		log:  log.Extend(log.With().Str(logger.ConnectionField, id.Short())),
	}
}

func (ws *WS) Id() com.Uid           { return ws.id }
func (ws *WS) RemoteAddr() string    { return ws.conn.sock.RemoteAddr().String() }
func (ws *WS) Done() <-chan struct{} { return ws.done }

func (ws *WS) Listen(onMessage func([]byte), onClose func()) {
	ws.onMessage, ws.onClose = onMessage, onClose
	ws.mu.Lock()
	ws.listening = true
	ws.mu.Unlock()
	go ws.writer()
	go ws.reader()
}

// reader pumps messages from the websocket connection to the onMessage callback.
// Blocking, must be called as goroutine. Serializes all websocket reads.
func (ws *WS) reader() {
	defer func() {
		ws.shutdown()
		if ws.onClose != nil {
			ws.onClose()
		}
		ws.log.Debug().Str(logger.DirectionField, "x").Msg("Close reader")
	}()
	ws.conn.setup(func(conn *websocket.Conn) {
		if ws.opts.MaxMessageSize > 0 {
			conn.SetReadLimit(ws.opts.MaxMessageSize)
		}
		if ws.opts.PingPong {
			_ = conn.SetReadDeadline(time.Now().Add(pongTime))
			conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongTime)) })
		}
	})
	for {
		message, err := ws.conn.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Warn().Err(err).Msg("Read")
			}
			return
		}
		ws.onMessage(message)
	}
}

// writer pumps messages from the send channel to the websocket connection.
// Blocking, must be called as goroutine. Serializes all websocket writes.
func (ws *WS) writer() {
	var tick <-chan time.Time
	if ws.opts.PingPong {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case message := <-ws.send:
			if err := ws.conn.write(websocket.TextMessage, message); err != nil {
				ws.log.Warn().Err(err).Msg("Write")
				ws.closeSocket()
				ws.shutdown()
				return
			}
		case <-tick:
			if err := ws.conn.write(websocket.PingMessage, nil); err != nil {
				ws.closeSocket()
				ws.shutdown()
				return
			}
		case <-ws.done:
			ws.flush()
			ws.conn.closeMessage()
			ws.closeSocket()
			return
		}
	}
}

// flush writes out what is left in the send queue.
func (ws *WS) flush() {
	for {
		select {
		case message := <-ws.send:
			if err := ws.conn.write(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Write queues the message, it drops the message when
// the queue is full or the connection is closed.
func (ws *WS) Write(data []byte) bool {
	select {
	case <-ws.done:
		return false
	default:
	}
	select {
	case ws.send <- data:
		return true
	default:
		ws.log.Warn().Msg("Send queue is full, drop")
		return false
	}
}

// Close terminates the connection. The writer sends the queued
// messages and a normal close frame before it drops the socket,
// the onClose callback will follow from the reader.
func (ws *WS) Close() { ws.shutdown() }

func (ws *WS) shutdown() {
	ws.once.Do(func() {
		close(ws.done)
		ws.mu.Lock()
		listening := ws.listening
		ws.mu.Unlock()
		// no writer to do it
		if !listening {
			ws.closeSocket()
		}
	})
}

func (ws *WS) closeSocket() { ws.sockOnce.Do(func() { _ = ws.conn.close() }) }
