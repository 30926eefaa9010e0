package room

import (
	"sort"
	"sync"

	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/com"
	"github.com/teleconsult/signal/pkg/logger"
)

// Peer is a live connection that can be a room member.
// Notify must never block.
type Peer interface {
	Id() com.Uid
	Notify(t api.Event, payload any)
}

type Participant struct {
	Peer
	Role Role
}

// Room is the call state of one consultation.
// It holds at most one member per role. All the methods
// with the mu suffix must be called with the lock held.
type Room struct {
	id      string
	mu      sync.Mutex
	members map[com.Uid]Participant
	// ready is set while both roles are present
	ready bool
	// closed marks a room removed from the table
	closed bool
	log    *logger.Logger
}

type (
	MemberInfo struct {
		Id   string `json:"id"`
		Role Role   `json:"role"`
	}
	Info struct {
		Id      string       `json:"roomId"`
		Ready   bool         `json:"ready"`
		Members []MemberInfo `json:"members"`
	}
)

type JoinResult struct {
	// Evicted is the replaced member connection, nil if none.
	Evicted Peer
	// Ready is true when the join made both roles present.
	Ready bool
}

func newRoom(id string, log *logger.Logger) *Room {
	return &Room{
		id:      id,
		members: make(map[com.Uid]Participant, 2),
		log:     log.Extend(log.With().Str(logger.RoomField, id)),
	}
}

func (r *Room) Id() string { return r.id }

func (r *Room) Len() int { r.mu.Lock(); defer r.mu.Unlock(); return len(r.members) }

func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := Info{Id: r.id, Ready: r.ready, Members: make([]MemberInfo, 0, len(r.members))}
	for id, m := range r.members {
		info.Members = append(info.Members, MemberInfo{Id: id.String(), Role: m.Role})
	}
	sort.Slice(info.Members, func(i, j int) bool { return info.Members[i].Role < info.Members[j].Role })
	return info
}

func (r *Room) holderMu(role Role) (Participant, bool) {
	for _, m := range r.members {
		if m.Role == role {
			return m, true
		}
	}
	return Participant{}, false
}

func (r *Room) bothPresentMu() bool {
	_, d := r.holderMu(Doctor)
	_, p := r.holderMu(Patient)
	return d && p
}

func (r *Room) joinMu(p Peer, role Role, reg *Registry) (res JoinResult) {
	id := p.Id()
	if m, ok := r.members[id]; ok && m.Role != role {
		r.log.Info().Str(logger.ConnectionField, id.Short()).Msgf("%v switches to %v", m.Role, role)
		r.leaveMu(id, reg)
	}

	if old, ok := r.holderMu(role); ok && old.Id() != id {
		r.log.Warn().
			Str(logger.ConnectionField, old.Id().Short()).
			Str(logger.RoleField, role.String()).
			Msgf("Duplicate %v, replaced by %v", role, id.Short())
		old.Notify(api.SessionReplaced, nil)
		delete(r.members, old.Id())
		reg.ForgetIf(old.Id(), r.id)
		r.ready = false
		res.Evicted = old.Peer
		evictions.Inc()
		participantsGauge.Dec()
	}

	if _, ok := r.members[id]; !ok {
		participantsGauge.Inc()
	}
	r.members[id] = Participant{Peer: p, Role: role}
	reg.Record(id, r.id, role)
	r.log.Info().Str(logger.ConnectionField, id.Short()).Str(logger.RoleField, role.String()).Msg("Joined")

	r.notifyOthersMu(id, api.PeerJoined, api.PeerRole{Role: role.String()})

	if !r.ready && r.bothPresentMu() {
		r.ready = true
		res.Ready = true
		readiness.Inc()
		r.log.Info().Msg("Both parties are present")
		r.notifyAllMu(api.ReadyToConnect, nil)
	}
	return
}

func (r *Room) leaveMu(id com.Uid, reg *Registry) (Participant, bool) {
	m, ok := r.members[id]
	if !ok {
		return m, false
	}
	delete(r.members, id)
	reg.ForgetIf(id, r.id)
	r.ready = false
	participantsGauge.Dec()
	r.log.Info().Str(logger.ConnectionField, id.Short()).Str(logger.RoleField, m.Role.String()).Msg("Left")
	r.notifyOthersMu(id, api.PeerDisconnected, api.PeerRole{Role: m.Role.String()})
	return m, true
}

func (r *Room) notifyOthersMu(from com.Uid, t api.Event, payload any) (n int) {
	for id, m := range r.members {
		if id == from {
			continue
		}
		m.Notify(t, payload)
		n++
	}
	return
}

func (r *Room) notifyAllMu(t api.Event, payload any) int {
	for _, m := range r.members {
		m.Notify(t, payload)
	}
	return len(r.members)
}
