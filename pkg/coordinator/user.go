package coordinator

import (
	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/network"
)

// User is a call participant connection.
type User struct {
	conn network.Conn
	log  *logger.Logger
}

func NewUser(conn network.Conn, log *logger.Logger) *User {
	return &User{
		conn: conn,
		log:  log.Extend(log.With().Str(logger.ConnectionField, conn.Id().Short())),
	}
}

func (u *User) Id() com.Uid { return u.conn.Id() }

// Notify sends an event to the user, the message is dropped
// if the connection can't take it right away.
func (u *User) Notify(t api.Event, payload any) {
	data, err := api.Encode(t, payload)
	if err != nil {
		u.log.Error().Err(err).Str("t", string(t)).Msg("encode")
		return
	}
	u.write(t, data)
}

func (u *User) ack(id string, resp api.AckResponse) {
	if id == "" {
		return
	}
	data, err := api.EncodeAck(id, resp)
	if err != nil {
		u.log.Error().Err(err).Msg("ack encode")
		return
	}
	u.write(api.Ack, data)
}

func (u *User) write(t api.Event, data []byte) {
	if !u.conn.Write(data) {
		dropped.Inc()
		u.log.Warn().Str(logger.DirectionField, "→").Str("t", string(t)).Msg("Dropped")
		return
	}
	u.log.Debug().Str(logger.DirectionField, "→").Str("t", string(t)).Msg("")
}

func (u *User) Disconnect() { u.conn.Close() }
