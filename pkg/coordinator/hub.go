package coordinator

import (
	"net/http"

	gws "github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/network"
	"github.com/teleconsult/signal/pkg/network/polling"
	"github.com/teleconsult/signal/pkg/network/websocket"
	"github.com/teleconsult/signal/pkg/room"
)

// Hub attaches client connections to the room table.
// It keeps no call state of its own.
type Hub struct {
	table    *room.Table
	users    *com.Map[com.Uid, *User]
	ice      func() []webrtc.ICEServer
	upgrader *gws.Upgrader
	wsOpts   websocket.Options
	log      *logger.Logger
}

func NewHub(conf config.Transport, table *room.Table, ice func() []webrtc.ICEServer, log *logger.Logger) *Hub {
	return &Hub{
		table:    table,
		users:    com.NewMap[com.Uid, *User](),
		ice:      ice,
		upgrader: websocket.NewUpgrader(),
		wsOpts: websocket.Options{
			MaxMessageSize: conf.MaxMessageSize,
			QueueSize:      conf.QueueSize,
			PingPong:       true,
		},
		log: log.Module("hub"),
	}
}

// handleWebsocket handles all the websocket connections from the call participants.
func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.NewServer(w, r, h.upgrader, h.wsOpts, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	h.connect(conn, "ws")
}

// handlePolling attaches a new long-polling session.
func (h *Hub) handlePolling(s *polling.Session) { h.connect(s, "poll") }

func (h *Hub) connect(conn network.Conn, transport string) *User {
	usr := NewUser(conn, h.log)
	h.users.Put(usr.Id(), usr)
	connections.WithLabelValues(transport).Inc()
	usr.log.Info().Str("addr", conn.RemoteAddr()).Str("transport", transport).Msg("Connected")

	usr.Notify(api.SessionInit, api.SessionInitResponse{Id: usr.Id().String(), Ice: h.ice()})
	conn.Listen(
		func(data []byte) { h.handle(usr, data) },
		func() {
			h.disconnect(usr)
			connections.WithLabelValues(transport).Dec()
		},
	)
	return usr
}

// disconnect runs the same leave path as an explicit leave-room.
func (h *Hub) disconnect(usr *User) {
	h.users.RemoveByKey(usr.Id())
	h.table.Disconnect(usr.Id())
	usr.log.Info().Str(logger.DirectionField, "x").Msg("Disconnected")
}

func (h *Hub) Len() int { return h.users.Len() }

// Close disconnects all the users.
func (h *Hub) Close() {
	for _, u := range h.users.Values() {
		u.Disconnect()
	}
}
