package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client *firestore.Client
	record *recordRepository
	claim  *expenseClaimRepository
	scheme *schemeRepository
	target *targetRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// collections resolves collection names with an optional prefix shared by
// every repository of one Firestore instance
type collections struct {
	prefix string
}

func (c *collections) name(base string) string {
	return CollectionName(c.prefix, base)
}

// CollectionName returns the collection holding base under prefix
func CollectionName(prefix, base string) string {
	if prefix != "" {
		return prefix + "_" + base
	}
	return base
}

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.record.prefix = prefix
		f.claim.prefix = prefix
		f.scheme.prefix = prefix
		f.target.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client: client,
		record: &recordRepository{client: client},
		claim:  &expenseClaimRepository{client: client},
		scheme: &schemeRepository{client: client},
		target: &targetRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Record() interfaces.RecordRepository {
	return f.record
}

func (f *Firestore) ExpenseClaim() interfaces.ExpenseClaimRepository {
	return f.claim
}

func (f *Firestore) Scheme() interfaces.SchemeRepository {
	return f.scheme
}

func (f *Firestore) Target() interfaces.TargetRepository {
	return f.target
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
