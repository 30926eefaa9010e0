package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/teleconsult/signal/pkg/api"
	"github.com/teleconsult/signal/pkg/config"
	"github.com/teleconsult/signal/pkg/logger"
)

// Broker receives room notices published into a Redis channel by the
// rest of the consultation platform, such as
//
//	PUBLISH signal:events '{"roomId":"c-1","t":"patient-joined-waiting-room"}'
type Broker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	ps      *redis.PubSub
	done    chan struct{}
	log     *logger.Logger
}

func NewBroker(conf config.Redis, hub *Hub, log *logger.Logger) (*Broker, error) {
	opts := &redis.Options{Addr: conf.Addr, Password: conf.Password, DB: conf.DB}
	if strings.HasPrefix(conf.Addr, "redis://") || strings.HasPrefix(conf.Addr, "rediss://") {
		o, err := redis.ParseURL(conf.Addr)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		opts = o
	}
	return &Broker{
		client:  redis.NewClient(opts),
		channel: conf.Channel,
		hub:     hub,
		done:    make(chan struct{}),
		log:     log.Module("redis"),
	}, nil
}

func (b *Broker) Run() {
	b.ps = b.client.Subscribe(context.Background(), b.channel)
	b.log.Info().Str("channel", b.channel).Msg("Subscribed")
	go func() {
		defer close(b.done)
		for msg := range b.ps.Channel() {
			if err := b.dispatch([]byte(msg.Payload)); err != nil {
				b.log.Warn().Err(err).Msg("Bad notice")
			}
		}
	}()
}

func (b *Broker) dispatch(data []byte) error {
	var n api.RoomNotice
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", api.ErrMalformed, err)
	}
	if err := n.Validate(); err != nil {
		return err
	}
	b.hub.notice(n, "redis")
	return nil
}

func (b *Broker) Shutdown(ctx context.Context) error {
	if b.ps != nil {
		_ = b.ps.Close()
		select {
		case <-b.done:
		case <-ctx.Done():
		}
	}
	return b.client.Close()
}

func (b *Broker) String() string { return "redis::" + b.channel }
