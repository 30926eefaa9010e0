package coordinator

import (
	"fmt"

	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/room"
)

// handle processes a client frame. Frames of one connection
// are handled one at a time in the arrival order.
func (h *Hub) handle(usr *User, data []byte) {
	in, err := api.Decode(data)
	if err != nil {
		usr.log.Warn().Err(err).Msg("Bad frame")
		events.WithLabelValues("", "error").Inc()
		usr.ack(in.Id, api.Fail(err))
		return
	}
	usr.log.Debug().Str(logger.DirectionField, "←").Str("t", string(in.T)).Msg("")

	var rid string
	switch in.T {
	case api.JoinRoom:
		rid, err = h.handleJoin(usr, in.Payload)
	case api.LeaveRoom:
		rid, err = h.handleLeave(usr, in.Payload)
	case api.Offer, api.Answer, api.IceCandidate:
		rid, err = h.handleSignal(usr, in.T, in.Payload)
	case api.ToggleVideo, api.ToggleAudio:
		rid, err = h.handleToggle(usr, in.T, in.Payload)
	default:
		err = fmt.Errorf("%w: %q", api.ErrUnknownEvent, in.T)
	}

	if err != nil {
		usr.log.Warn().Err(err).Str("t", string(in.T)).Msg("Rejected")
		events.WithLabelValues(string(in.T), "error").Inc()
		usr.ack(in.Id, api.Fail(err))
		return
	}
	events.WithLabelValues(string(in.T), "ok").Inc()
	usr.ack(in.Id, api.Ok(rid))
}

func (h *Hub) handleJoin(usr *User, payload []byte) (string, error) {
	rq, err := api.Unwrap[api.JoinRoomRequest](payload)
	if err != nil {
		return "", err
	}
	if err = rq.Validate(); err != nil {
		return "", err
	}
	role, err := room.ParseRole(rq.Role)
	if err != nil {
		return "", fmt.Errorf("%w: %w", api.ErrMalformed, err)
	}
	res := h.table.Join(usr, rq.Rid, role)
	l := usr.log.Info().Str(logger.RoomField, rq.Rid).Str(logger.RoleField, role.String())
	if res.Evicted != nil {
		l = l.Str("replaced", res.Evicted.Id().Short())
	}
	l.Bool("ready", res.Ready).Msg("Joined")
	return rq.Rid, nil
}

func (h *Hub) handleLeave(usr *User, payload []byte) (string, error) {
	rq, err := api.Unwrap[api.LeaveRoomRequest](payload)
	if err != nil {
		return "", err
	}
	if err = rq.Validate(); err != nil {
		return "", err
	}
	if h.table.Leave(usr.Id(), rq.Rid) {
		usr.log.Info().Str(logger.RoomField, rq.Rid).Msg("Left")
	}
	return rq.Rid, nil
}

func (h *Hub) handleSignal(usr *User, t api.Event, payload []byte) (string, error) {
	rq, err := api.Unwrap[api.SignalRequest](payload)
	if err != nil {
		return "", err
	}
	if err = rq.Validate(); err != nil {
		return "", err
	}
	out, _ := t.RelayedAs()
	h.table.Relay(usr.Id(), rq.Rid, out, api.SignalRelay{Signal: rq.Signal})
	return rq.Rid, nil
}

func (h *Hub) handleToggle(usr *User, t api.Event, payload []byte) (string, error) {
	rq, err := api.Unwrap[api.ToggleRequest](payload)
	if err != nil {
		return "", err
	}
	if err = rq.Validate(); err != nil {
		return "", err
	}
	out, _ := t.RelayedAs()
	h.table.Relay(usr.Id(), rq.Rid, out, api.Toggle{Enabled: *rq.Enabled})
	return rq.Rid, nil
}
