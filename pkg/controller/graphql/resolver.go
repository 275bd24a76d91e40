package graphql

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

// Resolver serves the GraphQL schema from the use cases. Authorization stays
// in the use cases, so every field sees the same rules as the JSON API.
type Resolver struct {
	uc *usecase.UseCases
}

func NewResolver(uc *usecase.UseCases) *Resolver {
	return &Resolver{
		uc: uc,
	}
}

// loaders returns the request-scoped data loaders, or fresh ones when the
// request did not go through the handler
func (r *Resolver) loaders(ctx context.Context) *DataLoaders {
	if l := GetDataLoaders(ctx); l != nil {
		return l
	}
	return NewDataLoaders(r.uc)
}

// on adapts a typed resolver to the field table
func on[T any](fn func(ctx context.Context, obj T, args map[string]any) (any, error)) fieldFunc {
	return func(ctx context.Context, obj any, args map[string]any) (any, error) {
		typed, ok := obj.(T)
		if !ok {
			return nil, goerr.New("unexpected parent object", goerr.V("type", fmt.Sprintf("%T", obj)))
		}
		return fn(ctx, typed, args)
	}
}

// prop adapts a plain accessor to the field table
func prop[T any](fn func(obj T) any) fieldFunc {
	return on(func(_ context.Context, obj T, _ map[string]any) (any, error) {
		return fn(obj), nil
	})
}

// optional maps an empty string to null
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// fields is the resolver table of every object type in the schema
func (r *Resolver) fields() map[string]map[string]fieldFunc {
	return map[string]map[string]fieldFunc{
		"Query":    r.queryFields(),
		"Mutation": r.mutationFields(),

		"Principal":    principalFields(),
		"NavItem":      navItemFields(),
		"StatCard":     statCardFields(),
		"Notification": notificationFields(),
		"Entity":       entityFields(),
		"EntityField":  entityFieldFields(),
		"Reference":    referenceFields(),
		"Record":       r.recordFields(),

		"SchemeTotals":  schemeTotalsFields(),
		"Scheme":        r.schemeFields(),
		"ExpenseClaim":  r.claimFields(),
		"TargetLine":    r.targetLineFields(),
		"TargetSummary": targetSummaryFields(),
		"Target":        r.targetFields(),

		"RecordResult":       recordResultFields(),
		"ExpenseClaimResult": claimResultFields(),
		"SchemeResult":       schemeResultFields(),
		"TargetResult":       targetResultFields(),
		"DeleteResult":       deleteResultFields(),
	}
}
