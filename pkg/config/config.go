package config

import "time"

type Signal struct {
	Debug bool
	// Namespace prefixes all the signaling routes.
	Namespace  string `default:"/signaling"`
	Log        Log
	Server     Server
	Monitoring Monitoring
	Transport  Transport
	Webrtc     Webrtc
	Internal   Internal
	Redis      Redis
}

type Log struct {
	Json    bool
	NoColor bool
}

type Server struct {
	Address  string `default:":8000"`
	Https    bool
	PortRoll bool
	Tls      struct {
		Address   string `default:":443"`
		Domain    string
		HttpsKey  string
		HttpsCert string
	}
}

func (s *Server) GetAddr() string {
	if s.Https {
		return s.Tls.Address
	}
	return s.Address
}

type Monitoring struct {
	Port             int `default:"6601"`
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

type Transport struct {
	// QueueSize is the number of outbound messages buffered per connection.
	QueueSize      int           `default:"256"`
	MaxMessageSize int64         `default:"65536"`
	PollWait       time.Duration `default:"25s"`
	PollIdle       time.Duration `default:"60s"`
}

type Internal struct {
	// Token guards the internal API, no auth when empty.
	Token string
}

type Redis struct {
	// Addr enables the room event subscription, off when empty.
	Addr     string
	Password string
	DB       int
	Channel  string `default:"signal:events"`
}

func (r *Redis) IsEnabled() bool { return r.Addr != "" }
