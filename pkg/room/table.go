package room

import (
	"sort"

	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/logger"
)

// Table maps consultation ids to live rooms.
//
// Lock order is the table map first, then a room,
// a room lock is never held while the map is being locked.
type Table struct {
	rooms *com.Map[string, *Room]
	reg   *Registry
	log   *logger.Logger
}

func NewTable(log *logger.Logger) *Table {
	return &Table{
		rooms: com.NewMap[string, *Room](),
		reg:   NewRegistry(),
		log:   log.Module("room"),
	}
}

func (t *Table) Registry() *Registry { return t.reg }

// GetOrCreate returns the room with the id creating it if needed.
func (t *Table) GetOrCreate(id string) *Room {
	r, isNew := t.rooms.GetOrPut(id, func() *Room { return newRoom(id, t.log) })
	if isNew {
		roomsGauge.Inc()
		t.log.Debug().Str(logger.RoomField, id).Msg("Room created")
	}
	return r
}

// RemoveIfEmpty deletes the room if it has no members.
func (t *Table) RemoveIfEmpty(id string) bool {
	removed := t.rooms.RemoveIf(id, func(r *Room) bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		if len(r.members) > 0 {
			return false
		}
		r.closed = true
		return true
	})
	if removed {
		roomsGauge.Dec()
		t.log.Debug().Str(logger.RoomField, id).Msg("Room removed")
	}
	return removed
}

func (t *Table) Find(id string) (*Room, bool) {
	r, err := t.rooms.Find(id)
	return r, err == nil
}

func (t *Table) Len() int { return t.rooms.Len() }

// Join puts the peer into the room under the role.
// A peer already sitting in some other room leaves it first.
func (t *Table) Join(p Peer, id string, role Role) JoinResult {
	if seat, ok := t.reg.Find(p.Id()); ok && seat.Room != id {
		t.Leave(p.Id(), seat.Room)
	}
	for {
		r := t.GetOrCreate(id)
		r.mu.Lock()
		if r.closed {
			// lost the race with the removal, take the new one
			r.mu.Unlock()
			continue
		}
		res := r.joinMu(p, role, t.reg)
		r.mu.Unlock()
		return res
	}
}

// Leave takes the connection out of the room.
// It reports whether the connection was a member.
func (t *Table) Leave(id com.Uid, roomId string) bool {
	r, ok := t.Find(roomId)
	if !ok {
		return false
	}
	r.mu.Lock()
	_, left := r.leaveMu(id, t.reg)
	empty := len(r.members) == 0
	r.mu.Unlock()
	if empty {
		t.RemoveIfEmpty(roomId)
	}
	return left
}

// Disconnect is Leave for a closed connection which room is unknown.
func (t *Table) Disconnect(id com.Uid) bool {
	seat, ok := t.reg.Forget(id)
	if !ok {
		return false
	}
	return t.Leave(id, seat.Room)
}

// Relay forwards the payload to every other member of the room.
// Only a current member may relay. Returns the number of recipients.
func (t *Table) Relay(from com.Uid, roomId string, e api.Event, payload any) int {
	n := 0
	if r, ok := t.Find(roomId); ok {
		r.mu.Lock()
		if _, member := r.members[from]; member {
			n = r.notifyOthersMu(from, e, payload)
		}
		r.mu.Unlock()
	}
	if n == 0 {
		dropped.Inc()
		return 0
	}
	relayed.WithLabelValues(string(e)).Add(float64(n))
	return n
}

// Broadcast sends the event to all members of the room.
func (t *Table) Broadcast(roomId string, e api.Event, payload any) int {
	r, ok := t.Find(roomId)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifyAllMu(e, payload)
}

// Rooms returns a snapshot of all the rooms ordered by id.
func (t *Table) Rooms() []Info {
	rooms := t.rooms.Values()
	out := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}
