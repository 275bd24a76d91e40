package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/service/events"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Events holds CLI flags for the NATS connection that carries cache
// invalidations between instances
type Events struct {
	natsURL string
	subject string
}

func (x *Events) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nats-url",
			Usage:       "NATS server URL. Cache invalidations stay local when empty.",
			Category:    "Events",
			Sources:     cli.EnvVars("SALESDESK_NATS_URL"),
			Destination: &x.natsURL,
		},
		&cli.StringFlag{
			Name:        "nats-subject",
			Usage:       "Subject for cache invalidation messages",
			Category:    "Events",
			Value:       events.DefaultSubject,
			Sources:     cli.EnvVars("SALESDESK_NATS_SUBJECT"),
			Destination: &x.subject,
		},
	}
}

func (x Events) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("nats", x.natsURL != ""),
		slog.String("subject", x.subject),
	)
}

// Configure connects to NATS. Without a URL it returns a bus that keeps
// invalidations in this process.
func (x *Events) Configure() (interfaces.EventBus, error) {
	if x.natsURL == "" {
		return events.Noop{}, nil
	}
	conn, err := events.NewNATS(x.natsURL, events.WithSubject(x.subject))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to NATS")
	}
	logging.Default().Info("NATS cache invalidation enabled", "subject", x.subject)
	return conn, nil
}

// Cache holds CLI flags for the shared query cache
type Cache struct {
	size int
	ttl  time.Duration
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "cache-size",
			Usage:       "Maximum number of cached list queries",
			Category:    "Cache",
			Value:       querycache.DefaultMaxSize,
			Sources:     cli.EnvVars("SALESDESK_CACHE_SIZE"),
			Destination: &x.size,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of a cached list query",
			Category:    "Cache",
			Value:       querycache.DefaultTTL,
			Sources:     cli.EnvVars("SALESDESK_CACHE_TTL"),
			Destination: &x.ttl,
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("size", x.size),
		slog.Duration("ttl", x.ttl),
	)
}

// Configure creates the query cache that broadcasts through publisher
func (x *Cache) Configure(publisher interfaces.Publisher) *querycache.Cache {
	return querycache.New(
		querycache.WithMaxSize(x.size),
		querycache.WithTTL(x.ttl),
		querycache.WithPublisher(publisher),
	)
}
