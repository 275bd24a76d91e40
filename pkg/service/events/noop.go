package events

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

// Noop is used when no broker is configured. Invalidations stay local.
type Noop struct{}

var (
	_ interfaces.Publisher  = Noop{}
	_ interfaces.Subscriber = Noop{}
)

func (Noop) Publish(ctx context.Context, inv interfaces.Invalidation) error {
	return nil
}

// Subscribe returns a channel that never delivers and closes with ctx
func (Noop) Subscribe(ctx context.Context) (<-chan interfaces.Invalidation, error) {
	ch := make(chan interfaces.Invalidation)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (Noop) Close() error {
	return nil
}
