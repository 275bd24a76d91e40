package querycache

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxSize = 512
	DefaultTTL     = 5 * time.Minute
)

// Cache is the shared query cache. Entries are evicted by LRU order and TTL,
// and dropped per entity on invalidation. Cached values are shared between
// callers and must be treated as read-only.
type Cache struct {
	mu       sync.Mutex
	maxSize  int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
	byEntity map[string]map[string]struct{}
	// generation is bumped on every invalidation of an entity so that a
	// load started before it never stores its result
	generation map[string]uint64

	group     singleflight.Group
	origin    string
	publisher interfaces.Publisher
	now       func() time.Time
}

type entry struct {
	key       string
	entity    string
	data      any
	expiresAt time.Time
}

type Option func(*Cache)

func WithMaxSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithOrigin sets the instance identifier stamped on published invalidations
func WithOrigin(origin string) Option {
	return func(c *Cache) {
		if origin != "" {
			c.origin = origin
		}
	}
}

// WithPublisher broadcasts invalidations to other instances
func WithPublisher(p interfaces.Publisher) Option {
	return func(c *Cache) {
		c.publisher = p
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		maxSize:    DefaultMaxSize,
		ttl:        DefaultTTL,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		byEntity:   make(map[string]map[string]struct{}),
		generation: make(map[string]uint64),
		origin:     uuid.NewString(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin returns the instance identifier
func (c *Cache) Origin() string {
	return c.origin
}

// Get returns the cached value of key
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key.String()]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return e.data, true
}

// Set stores data under key
func (c *Cache) Set(key Key, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, data)
}

func (c *Cache) set(key Key, data any) {
	s := key.String()
	e := &entry{key: s, entity: key.Entity, data: data, expiresAt: c.now().Add(c.ttl)}

	if elem, ok := c.items[s]; ok {
		elem.Value = e
		c.lru.MoveToFront(elem)
		return
	}

	c.items[s] = c.lru.PushFront(e)
	keys, ok := c.byEntity[key.Entity]
	if !ok {
		keys = make(map[string]struct{})
		c.byEntity[key.Entity] = keys
	}
	keys[s] = struct{}{}

	for c.lru.Len() > c.maxSize {
		c.removeElement(c.lru.Back())
	}
}

func (c *Cache) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	if keys, ok := c.byEntity[e.entity]; ok {
		delete(keys, e.key)
		if len(keys) == 0 {
			delete(c.byEntity, e.entity)
		}
	}
	c.lru.Remove(elem)
}

// Len returns the number of cached entries, expired ones included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Invalidate drops every cached key of the entities on this instance only
func (c *Cache) Invalidate(entities ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entity := range entities {
		c.generation[entity]++
		for key := range c.byEntity[entity] {
			if elem, ok := c.items[key]; ok {
				c.removeElement(elem)
			}
		}
	}
}

// Broadcast invalidates locally, then publishes the invalidation so other
// instances drop the same keys
func (c *Cache) Broadcast(ctx context.Context, entities ...string) error {
	c.Invalidate(entities...)
	if c.publisher == nil || len(entities) == 0 {
		return nil
	}
	inv := interfaces.Invalidation{Origin: c.origin, Entities: entities}
	if err := c.publisher.Publish(ctx, inv); err != nil {
		return goerr.Wrap(err, "failed to publish invalidation", goerr.V("entities", entities))
	}
	return nil
}

// Listen applies invalidations from other instances until ctx is done.
// Messages carrying this instance's origin are ignored.
func (c *Cache) Listen(ctx context.Context, sub interfaces.Subscriber) error {
	ch, err := sub.Subscribe(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to subscribe invalidations")
	}

	go func() {
		for inv := range ch {
			if inv.Origin == c.origin {
				continue
			}
			logging.From(ctx).Debug("Remote invalidation", "origin", inv.Origin, "entities", inv.Entities)
			c.Invalidate(inv.Entities...)
		}
	}()
	return nil
}

// Fetch returns the cached value of key or loads it. Concurrent misses for
// the same key share one load. The shared load does not observe any caller's
// cancellation; a cancelled caller stops waiting and gets ctx.Err(). A load
// that races with an invalidation of its entity returns its result without
// caching it.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	c.mu.Lock()
	gen := c.generation[key.Entity]
	c.mu.Unlock()

	// Callers arriving after an invalidation start a new load
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		data, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation[key.Entity] == gen {
			c.set(key, data)
		}
		c.mu.Unlock()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return zero, goerr.Wrap(ctx.Err(), "query cache fetch cancelled", goerr.V("key", key.String()))
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
