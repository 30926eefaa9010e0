package api

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v3"
)

const maxRoomIdLength = 128

type (
	Room struct {
		Rid string `json:"roomId"`
	}
	JoinRoomRequest struct {
		Room
		Role string `json:"role"`
	}
	LeaveRoomRequest struct {
		Room
	}
	// SignalRequest carries an opaque negotiation payload.
	SignalRequest struct {
		Room
		Signal json.RawMessage `json:"signal"`
	}
	ToggleRequest struct {
		Room
		Enabled *bool `json:"enabled"`
	}
	// RoomNotice is a server-originated event for all members of a room.
	RoomNotice struct {
		Room
		T       Event           `json:"t"`
		Payload json.RawMessage `json:"p,omitempty"`
	}
)

type (
	AckResponse struct {
		Success bool   `json:"success"`
		RoomId  string `json:"roomId,omitempty"`
		Error   string `json:"error,omitempty"`
	}
	PeerRole struct {
		Role string `json:"role"`
	}
	SignalRelay struct {
		Signal json.RawMessage `json:"signal"`
	}
	Toggle struct {
		Enabled bool `json:"enabled"`
	}
	NoticeResponse struct {
		Delivered int `json:"delivered"`
	}
	SessionInitResponse struct {
		Id  string             `json:"id"`
		Ice []webrtc.ICEServer `json:"ice"`
	}
)

func Ok(roomId string) AckResponse { return AckResponse{Success: true, RoomId: roomId} }

func Fail(err error) AckResponse { return AckResponse{Error: err.Error()} }

func (r Room) Validate() error {
	id := strings.TrimSpace(r.Rid)
	if id == "" {
		return fmt.Errorf("%w: no roomId", ErrMalformed)
	}
	if len(id) != len(r.Rid) || len(id) > maxRoomIdLength {
		return fmt.Errorf("%w: bad roomId", ErrMalformed)
	}
	return nil
}

func (r SignalRequest) Validate() error {
	if err := r.Room.Validate(); err != nil {
		return err
	}
	if len(r.Signal) == 0 || bytes.Equal(r.Signal, []byte("null")) {
		return fmt.Errorf("%w: no signal", ErrMalformed)
	}
	return nil
}

func (r ToggleRequest) Validate() error {
	if err := r.Room.Validate(); err != nil {
		return err
	}
	if r.Enabled == nil {
		return fmt.Errorf("%w: no enabled flag", ErrMalformed)
	}
	return nil
}

func (r RoomNotice) Validate() error {
	if err := r.Room.Validate(); err != nil {
		return err
	}
	if !r.T.IsRoomNotice() {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, r.T)
	}
	return nil
}
