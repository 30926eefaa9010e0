package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		event Event
		err   error
	}{
		{name: "join", frame: `{"id":"1","t":"join-room","p":{"roomId":"c-1","role":"doctor"}}`, event: JoinRoom},
		{name: "no id", frame: `{"t":"offer","p":{"roomId":"c-1","signal":{}}}`, event: Offer},
		{name: "no type", frame: `{"id":"1"}`, err: ErrMalformed},
		{name: "garbage", frame: `{"t":`, err: ErrMalformed},
		{name: "array", frame: `[]`, err: ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Decode([]byte(tt.frame))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.T != tt.event {
				t.Errorf("expected %v, got %v", tt.event, in.T)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		v    interface{ Validate() error }
		ok   bool
	}{
		{name: "room", v: Room{Rid: "c-1"}, ok: true},
		{name: "empty room", v: Room{}},
		{name: "blank room", v: Room{Rid: "  "}},
		{name: "padded room", v: Room{Rid: " c-1"}},
		{name: "long room", v: Room{Rid: string(make([]byte, 129))}},
		{name: "signal", v: SignalRequest{Room: Room{"c-1"}, Signal: json.RawMessage(`{"type":"offer"}`)}, ok: true},
		{name: "no signal", v: SignalRequest{Room: Room{"c-1"}}},
		{name: "null signal", v: SignalRequest{Room: Room{"c-1"}, Signal: json.RawMessage(`null`)}},
		{name: "signal without room", v: SignalRequest{Signal: json.RawMessage(`1`)}},
		{name: "toggle", v: ToggleRequest{Room: Room{"c-1"}, Enabled: &yes}, ok: true},
		{name: "toggle without flag", v: ToggleRequest{Room: Room{"c-1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestSignalIsKeptVerbatim(t *testing.T) {
	signal := `{"type":"offer","sdp":"v=0\r\no=- 46117 2 IN IP4 127.0.0.1\r\n","x":[1,2,{"y":null}]}`
	in, err := Decode([]byte(`{"t":"offer","p":{"roomId":"c-1","signal":` + signal + `}}`))
	if err != nil {
		t.Fatal(err)
	}
	rq, err := Unwrap[SignalRequest](in.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if string(rq.Signal) != signal {
		t.Errorf("signal has been changed:\n%s\n%s", rq.Signal, signal)
	}

	out, err := Encode(Offer, SignalRelay{Signal: rq.Signal})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"t":"offer","p":{"signal":` + signal + `}}`
	if string(out) != want {
		t.Errorf("unexpected frame:\n%s\n%s", out, want)
	}
}

func TestEncodeKeepsHtml(t *testing.T) {
	signal := `{"type":"answer","sdp":"a=fingerprint:<sha-256> x&y"}`
	out, err := Encode(Answer, SignalRelay{Signal: json.RawMessage(signal)})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"t":"answer","p":{"signal":` + signal + `}}`; string(out) != want {
		t.Errorf("unexpected frame:\n%s\n%s", out, want)
	}

	ack, err := EncodeAck("1", AckResponse{Success: false, Error: "a<b"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ack), `"a<b"`) {
		t.Errorf("ack has been escaped: %s", ack)
	}
}

func TestRelayedAs(t *testing.T) {
	tests := []struct {
		in  Event
		out Event
		ok  bool
	}{
		{Offer, Offer, true},
		{Answer, Answer, true},
		{IceCandidate, IceCandidate, true},
		{ToggleVideo, PeerVideoToggle, true},
		{ToggleAudio, PeerAudioToggle, true},
		{JoinRoom, "", false},
		{Event("x"), "", false},
	}
	for _, tt := range tests {
		out, ok := tt.in.RelayedAs()
		if out != tt.out || ok != tt.ok {
			t.Errorf("%v: got %v %v, want %v %v", tt.in, out, ok, tt.out, tt.ok)
		}
	}
}

func TestAck(t *testing.T) {
	out, err := EncodeAck("7", Ok("c-1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"id":"7","t":"ack","p":{"success":true,"roomId":"c-1"}}` {
		t.Errorf("unexpected ack %s", out)
	}
	out, _ = EncodeAck("8", Fail(ErrUnknownEvent))
	if string(out) != `{"id":"8","t":"ack","p":{"success":false,"error":"unknown event"}}` {
		t.Errorf("unexpected ack %s", out)
	}
}

func TestRoomNotice(t *testing.T) {
	tests := []struct {
		name   string
		notice RoomNotice
		err    error
	}{
		{name: "joined", notice: RoomNotice{Room: Room{"c-1"}, T: PatientJoinedWaitingRoom}},
		{name: "finished", notice: RoomNotice{Room: Room{"c-1"}, T: PatientFinishedConsultation, Payload: json.RawMessage(`{"at":1}`)}},
		{name: "consultation ended", notice: RoomNotice{Room: Room{"c-1"}, T: ConsultationEnded}},
		{name: "no room", notice: RoomNotice{T: PatientLeftWaitingRoom}, err: ErrMalformed},
		{name: "client event", notice: RoomNotice{Room: Room{"c-1"}, T: Offer}, err: ErrUnknownEvent},
		{name: "ack", notice: RoomNotice{Room: Room{"c-1"}, T: Ack}, err: ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notice.Validate()
			if tt.err == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
