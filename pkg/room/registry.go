package room

import "github.com/teleconsult/signal/pkg/com"

// Seat is a room and role a connection has joined.
type Seat struct {
	Room string
	Role Role
}

// Registry keeps the last joined room of each connection.
// It serves disconnect lookups without scanning every room.
// Records are changed inside a room critical section, except
// for Forget of a closed connection.
type Registry struct {
	seats *com.Map[com.Uid, Seat]
}

func NewRegistry() *Registry { return &Registry{seats: com.NewMap[com.Uid, Seat]()} }

func (r *Registry) Record(id com.Uid, room string, role Role) {
	r.seats.Put(id, Seat{Room: room, Role: role})
}

// Forget removes the connection and returns its seat if there was one.
func (r *Registry) Forget(id com.Uid) (Seat, bool) { return r.seats.Pop(id) }

// ForgetIf removes the connection only if it still points to the room.
func (r *Registry) ForgetIf(id com.Uid, room string) bool {
	return r.seats.RemoveIf(id, func(s Seat) bool { return s.Room == room })
}

func (r *Registry) Find(id com.Uid) (Seat, bool) {
	s, err := r.seats.Find(id)
	return s, err == nil
}

func (r *Registry) Len() int { return r.seats.Len() }
