package coordinator

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/logger"
	"github.com/teleconsult/signal/pkg/monitoring"
	"github.com/teleconsult/signal/pkg/network/httpx"
	"github.com/teleconsult/signal/pkg/network/polling"
	"github.com/teleconsult/signal/pkg/room"
	"github.com/teleconsult/signal/pkg/service"
)

type Coordinator struct {
	service.Group

	conf    config.Signal
	hub     *Hub
	table   *room.Table
	poll    *polling.Server
	handler http.Handler
	server  *httpx.Server
	ice     atomic.Pointer[[]webrtc.ICEServer]
	watch   func() error
	log     *logger.Logger
}

// New assembles the signaling server. The path param is the config file
// to watch for the ICE server changes, no watch if empty.
func New(conf config.Signal, path string, log *logger.Logger) (*Coordinator, error) {
	if err := conf.Webrtc.Validate(); err != nil {
		return nil, err
	}
	c := &Coordinator{conf: conf, log: log}
	ice := conf.Webrtc.ICEServers()
	c.ice.Store(&ice)

	c.table = room.NewTable(log)
	c.hub = NewHub(conf.Transport, c.table, c.IceServers, log)
	c.poll = polling.NewServer(polling.Options{
		Wait:           conf.Transport.PollWait,
		Idle:           conf.Transport.PollIdle,
		QueueSize:      conf.Transport.QueueSize,
		MaxMessageSize: conf.Transport.MaxMessageSize,
	}, c.hub.handlePolling, log)
	c.handler = NewRouter(conf.Namespace, c.hub, c.poll, conf.Internal.Token)

	server, err := httpx.NewServer(
		conf.Server.GetAddr(),
		func(*httpx.Server) http.Handler { return c.handler },
		httpx.WithServerConfig(conf.Server),
		httpx.WithLogger(log),
		// long-polling requests are held open
		httpx.WithWriteTimeout(conf.Transport.PollWait+10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	c.server = server
	c.Add(server, c.poll)

	if conf.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Monitoring, log)
		if err != nil {
			return nil, err
		}
		c.Add(mon)
	}
	if conf.Redis.IsEnabled() {
		broker, err := NewBroker(conf.Redis, c.hub, log)
		if err != nil {
			return nil, err
		}
		c.Add(broker)
	}

	if path != "" {
		if c.watch, err = config.Watch(path, func() { c.reloadIce(path) }, log); err != nil {
			log.Warn().Err(err).Msg("No config watch")
		}
	}
	return c, nil
}

// IceServers returns the current ICE server list for the clients.
func (c *Coordinator) IceServers() []webrtc.ICEServer { return *c.ice.Load() }

func (c *Coordinator) reloadIce(path string) {
	var conf config.Signal
	if _, err := config.LoadConfig(&conf, path); err != nil {
		c.log.Warn().Err(err).Msg("Config reload")
		return
	}
	if err := conf.Webrtc.Validate(); err != nil {
		c.log.Warn().Err(err).Msg("Config reload, ICE servers are kept")
		return
	}
	ice := conf.Webrtc.ICEServers()
	c.ice.Store(&ice)
	c.log.Info().Int("servers", len(ice)).Msg("ICE servers reloaded")
}

func (c *Coordinator) Handler() http.Handler { return c.handler }
func (c *Coordinator) Table() *room.Table    { return c.table }

// Url is the base URL of the signaling routes.
func (c *Coordinator) Url() string { return c.server.Url() + c.conf.Namespace }

func (c *Coordinator) Start() {
	c.log.Info().Msgf("Signaling at %v", c.Url())
	c.Group.Start()
}

func (c *Coordinator) Shutdown(ctx context.Context) error {
	if c.watch != nil {
		_ = c.watch()
	}
	c.hub.Close()
	return c.Group.Shutdown(ctx)
}
