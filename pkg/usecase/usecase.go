package usecase

import (
	"time"

	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
)

type UseCases struct {
	repo           interfaces.Repository
	registry       *model.EntityRegistry
	cache          *querycache.Cache
	publisher      interfaces.Publisher
	storage        interfaces.ObjectStorage
	navigation     []model.NavItem
	uploadPolicies map[string]model.UploadPolicy
	now            func() time.Time

	Record       *RecordUseCase
	ExpenseClaim *ExpenseClaimUseCase
	Scheme       *SchemeUseCase
	Target       *TargetUseCase
	Upload       *UploadUseCase
	Dashboard    *DashboardUseCase
	Navigation   *NavigationUseCase
	Auth         AuthUseCaseInterface
}

type Option func(*UseCases)

// WithRegistry replaces the built-in entity schemas
func WithRegistry(registry *model.EntityRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

// WithCache sets the query cache shared by every list operation
func WithCache(cache *querycache.Cache) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

// WithPublisher broadcasts invalidations to other instances. It is ignored
// when WithCache is given, as the cache owns its publisher.
func WithPublisher(p interfaces.Publisher) Option {
	return func(uc *UseCases) {
		uc.publisher = p
	}
}

// WithStorage sets the object storage used for uploads
func WithStorage(storage interfaces.ObjectStorage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

// WithNavigation replaces the built-in menu
func WithNavigation(items []model.NavItem) Option {
	return func(uc *UseCases) {
		uc.navigation = items
	}
}

// WithUploadPolicies replaces the built-in upload contexts
func WithUploadPolicies(policies map[string]model.UploadPolicy) Option {
	return func(uc *UseCases) {
		uc.uploadPolicies = policies
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock overrides the time source used for timestamps and object keys
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.registry == nil {
		uc.registry = model.DefaultEntityRegistry()
	}
	if uc.cache == nil {
		var cacheOpts []querycache.Option
		if uc.publisher != nil {
			cacheOpts = append(cacheOpts, querycache.WithPublisher(uc.publisher))
		}
		uc.cache = querycache.New(cacheOpts...)
	}
	if uc.navigation == nil {
		uc.navigation = model.DefaultNavigation()
	}
	if uc.uploadPolicies == nil {
		uc.uploadPolicies = model.DefaultUploadPolicies()
	}

	uc.Record = NewRecordUseCase(repo, uc.registry, uc.cache)
	uc.ExpenseClaim = NewExpenseClaimUseCase(repo, uc.cache)
	uc.Scheme = NewSchemeUseCase(repo, uc.cache)
	uc.Target = NewTargetUseCase(repo, uc.cache)
	uc.Upload = NewUploadUseCase(uc.storage, uc.uploadPolicies, uc.now)
	uc.Dashboard = NewDashboardUseCase(uc.Record, uc.ExpenseClaim, uc.Scheme, uc.Target)
	uc.Navigation = NewNavigationUseCase(uc.navigation)

	return uc
}

// Registry returns the entity schemas in use
func (uc *UseCases) Registry() *model.EntityRegistry {
	return uc.registry
}

// Cache returns the shared query cache
func (uc *UseCases) Cache() *querycache.Cache {
	return uc.cache
}
