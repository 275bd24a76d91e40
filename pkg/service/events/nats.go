package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/nats-io/nats.go"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// DefaultSubject carries cache invalidations between instances
const DefaultSubject = "salesdesk.cache.invalidate"

// NATS publishes and receives invalidations over one NATS connection
type NATS struct {
	conn    *nats.Conn
	subject string
}

var (
	_ interfaces.Publisher  = &NATS{}
	_ interfaces.Subscriber = &NATS{}
)

type Option func(*natsConfig)

type natsConfig struct {
	subject string
	opts    []nats.Option
}

// WithSubject overrides DefaultSubject
func WithSubject(subject string) Option {
	return func(c *natsConfig) {
		if subject != "" {
			c.subject = subject
		}
	}
}

// WithNATSOptions appends raw client options such as credentials
func WithNATSOptions(opts ...nats.Option) Option {
	return func(c *natsConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// NewNATS connects to url with automatic reconnection
func NewNATS(url string, opts ...Option) (*NATS, error) {
	cfg := &natsConfig{
		subject: DefaultSubject,
		opts: []nats.Option{
			nats.Name("salesdesk"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(time.Second),
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	nc, err := nats.Connect(url, cfg.opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect NATS", goerr.V("url", url))
	}
	return &NATS{conn: nc, subject: cfg.subject}, nil
}

func (n *NATS) Publish(ctx context.Context, inv interfaces.Invalidation) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal invalidation")
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return goerr.Wrap(err, "failed to publish invalidation", goerr.V("subject", n.subject))
	}
	return nil
}

// Subscribe delivers invalidations until ctx is cancelled, then closes the
// channel. Messages are dropped when the receiver falls behind.
func (n *NATS) Subscribe(ctx context.Context) (<-chan interfaces.Invalidation, error) {
	ch := make(chan interfaces.Invalidation, 64)

	var (
		mu     sync.Mutex
		closed bool
	)

	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		var inv interfaces.Invalidation
		if err := json.Unmarshal(msg.Data, &inv); err != nil {
			logging.From(ctx).Warn("Dropping malformed invalidation", "error", err.Error())
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- inv:
		default:
			logging.From(ctx).Warn("Invalidation channel full, dropping message", "origin", inv.Origin)
		}
	})
	if err != nil {
		close(ch)
		return nil, goerr.Wrap(err, "failed to subscribe", goerr.V("subject", n.subject))
	}
	if err := n.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, goerr.Wrap(err, "failed to flush subscription")
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch, nil
}

func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return goerr.Wrap(err, "failed to drain NATS connection")
	}
	return nil
}
