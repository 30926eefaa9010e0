// Package api defines the signaling wire protocol shared by all transports.
//
// Each frame is a JSON-encoded "packet" of the following structure:
//
//	id - (optional) a client-chosen id, when present the server answers with an ack packet
//	     carrying the same id;
//	 t - (required) the event name;
//	 p - (optional) event payload.
//
// Negotiation payloads (session descriptions and network candidates) are kept as raw
// JSON and never decoded by the server.
//
// Example:
//
//	{"id":"1","t":"join-room","p":{"roomId":"c-1","role":"doctor"}}
//	{"id":"1","t":"ack","p":{"success":true,"roomId":"c-1"}}
package api

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

type Event string

type In struct {
	Id      string          `json:"id,omitempty"`
	T       Event           `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"` // should be json.RawMessage for 2-pass unmarshal
}

type Out struct {
	Id      string `json:"id,omitempty"`
	T       Event  `json:"t"`
	Payload any    `json:"p,omitempty"`
}

// Client events.
const (
	JoinRoom     Event = "join-room"
	LeaveRoom    Event = "leave-room"
	Offer        Event = "offer"
	Answer       Event = "answer"
	IceCandidate Event = "ice-candidate"
	ToggleVideo  Event = "toggle-video"
	ToggleAudio  Event = "toggle-audio"
)

// Server events.
const (
	Ack              Event = "ack"
	SessionInit      Event = "session-init"
	PeerJoined       Event = "peer-joined"
	PeerDisconnected Event = "peer-disconnected"
	SessionReplaced  Event = "session-replaced"
	ReadyToConnect   Event = "ready-to-connect"
	PeerVideoToggle  Event = "peer-video-toggle"
	PeerAudioToggle  Event = "peer-audio-toggle"

	PatientJoinedWaitingRoom    Event = "patient-joined-waiting-room"
	PatientLeftWaitingRoom      Event = "patient-left-waiting-room"
	PatientFinishedConsultation Event = "patient-finished-consultation"
	ConsultationEnded           Event = "consultation-ended"
)

var (
	ErrMalformed    = errors.New("malformed")
	ErrUnknownEvent = errors.New("unknown event")
)

// RelayedAs maps a client relay event onto the event
// that the other room members receive.
func (e Event) RelayedAs() (Event, bool) {
	switch e {
	case Offer, Answer, IceCandidate:
		return e, true
	case ToggleVideo:
		return PeerVideoToggle, true
	case ToggleAudio:
		return PeerAudioToggle, true
	}
	return "", false
}

// IsRoomNotice tells if the event can be pushed into a room by the
// surrounding application.
func (e Event) IsRoomNotice() bool {
	switch e {
	case PatientJoinedWaitingRoom, PatientLeftWaitingRoom, PatientFinishedConsultation, ConsultationEnded:
		return true
	}
	return false
}

// Decode reads a frame.
func Decode(data []byte) (In, error) {
	var in In
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.T == "" {
		return in, fmt.Errorf("%w: no event type", ErrMalformed)
	}
	return in, nil
}

// Encode makes a frame.
func Encode(t Event, payload any) ([]byte, error) {
	return json.MarshalNoEscape(Out{T: t, Payload: payload})
}

// EncodeAck makes an ack frame for the packet id.
func EncodeAck(id string, ack AckResponse) ([]byte, error) {
	return json.MarshalNoEscape(Out{Id: id, T: Ack, Payload: ack})
}

// Unwrap decodes a packet payload into the T type.
func Unwrap[T any](data []byte) (*T, error) {
	out := new(T)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no payload", ErrMalformed)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}
