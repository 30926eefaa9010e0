package config

import (
	"errors"
	"fmt"

	"github.com/pion/ice/v2"
	"github.com/pion/webrtc/v3"
)

type Webrtc struct {
	IceServers []IceServer
}

type IceServer struct {
	Urls       string `json:"urls,omitempty"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

var ErrTurnCredentials = errors.New("TURN servers should have both username and credential")

// Validate checks that all the ICE server URLs are parsable
// and TURN servers have credentials.
func (w *Webrtc) Validate() error {
	for _, s := range w.IceServers {
		u, err := ice.ParseURL(s.Urls)
		if err != nil {
			return fmt.Errorf("ice server %q: %w", s.Urls, err)
		}
		if (u.Scheme == ice.SchemeTypeTURN || u.Scheme == ice.SchemeTypeTURNS) &&
			(s.Username == "" || s.Credential == "") {
			return fmt.Errorf("ice server %q: %w", s.Urls, ErrTurnCredentials)
		}
	}
	return nil
}

// ICEServers converts the config into the WebRTC client format.
func (w *Webrtc) ICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(w.IceServers))
	for _, s := range w.IceServers {
		srv := webrtc.ICEServer{URLs: []string{s.Urls}, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}
