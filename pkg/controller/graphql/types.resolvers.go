package graphql

import (
	"context"
	"errors"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

const (
	productEntity   types.EntityName = "products"
	territoryEntity types.EntityName = "territories"
)

// reference is a select field of a record resolved to the record it points at
type reference struct {
	Field  string
	Entity string
	ID     string
	Label  string
}

func principalFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"sub":   prop(func(p *auth.Principal) any { return p.Sub }),
		"email": prop(func(p *auth.Principal) any { return p.Email }),
		"name":  prop(func(p *auth.Principal) any { return p.Name }),
		"role":  prop(func(p *auth.Principal) any { return p.Role }),
	}
}

func navItemFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"path":     prop(func(n *model.NavItem) any { return optional(n.Path) }),
		"label":    prop(func(n *model.NavItem) any { return n.Label }),
		"icon":     prop(func(n *model.NavItem) any { return optional(n.Icon) }),
		"children": prop(func(n *model.NavItem) any { return n.Children }),
	}
}

func statCardFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"title": prop(func(c *model.StatCard) any { return c.Title }),
		"value": prop(func(c *model.StatCard) any { return c.Value }),
		"delta": prop(func(c *model.StatCard) any { return optional(c.Delta) }),
		"tone":  prop(func(c *model.StatCard) any { return c.Tone }),
	}
}

func notificationFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"level":   prop(func(n *usecase.Notification) any { return n.Level }),
		"message": prop(func(n *usecase.Notification) any { return n.Message }),
	}
}

func entityFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"name":   prop(func(s *model.EntitySchema) any { return s.Name }),
		"label":  prop(func(s *model.EntitySchema) any { return s.Label }),
		"fields": prop(func(s *model.EntitySchema) any { return s.Fields }),
		"listFilters": prop(func(s *model.EntitySchema) any {
			if s.ListFilters == nil {
				return []string{}
			}
			return s.ListFilters
		}),
	}
}

func entityFieldFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"key":         prop(func(f *model.FieldSchema) any { return f.Key }),
		"label":       prop(func(f *model.FieldSchema) any { return f.Label }),
		"type":        prop(func(f *model.FieldSchema) any { return f.Type }),
		"required":    prop(func(f *model.FieldSchema) any { return f.Required }),
		"optionsFrom": prop(func(f *model.FieldSchema) any { return optional(string(f.OptionsFrom)) }),
		"filterBy":    prop(func(f *model.FieldSchema) any { return optional(string(f.FilterBy)) }),
	}
}

func referenceFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"field":  prop(func(r *reference) any { return r.Field }),
		"entity": prop(func(r *reference) any { return r.Entity }),
		"id":     prop(func(r *reference) any { return r.ID }),
		"label":  prop(func(r *reference) any { return r.Label }),
	}
}

func (r *Resolver) recordFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"id":     prop(func(rec *model.Record) any { return rec.ID }),
		"entity": prop(func(rec *model.Record) any { return rec.Entity }),
		"values": prop(func(rec *model.Record) any {
			if rec.Values == nil {
				return map[string]any{}
			}
			return rec.Values
		}),
		"references": on(r.recordReferences),
		"createdBy":  prop(func(rec *model.Record) any { return optional(rec.CreatedBy) }),
		"updatedBy":  prop(func(rec *model.Record) any { return optional(rec.UpdatedBy) }),
		"createdAt":  prop(func(rec *model.Record) any { return rec.CreatedAt }),
		"updatedAt":  prop(func(rec *model.Record) any { return rec.UpdatedAt }),
	}
}

// recordReferences resolves every filled select field that takes its choices
// from another entity. Dangling references are skipped.
func (r *Resolver) recordReferences(ctx context.Context, rec *model.Record, _ map[string]any) (any, error) {
	refs := []*reference{}
	schema, err := r.uc.Record.Schema(rec.Entity)
	if err != nil {
		if errors.Is(err, model.ErrUnknownEntity) {
			return refs, nil
		}
		return nil, err
	}

	loader := r.loaders(ctx).RecordLoader
	for _, f := range schema.Fields {
		if f.OptionsFrom == "" {
			continue
		}
		id := rec.Value(string(f.Key))
		if id == "" {
			continue
		}
		target, err := loader.Load(ctx, f.OptionsFrom, model.RecordID(id))
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}
		refs = append(refs, &reference{
			Field:  string(f.Key),
			Entity: string(f.OptionsFrom),
			ID:     id,
			Label:  target.Label(f.OptionLabel),
		})
	}
	return refs, nil
}

func schemeTotalsFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"claimsGenerated": prop(func(t *model.SchemeTotals) any { return t.ClaimsGenerated }),
		"claimsApproved":  prop(func(t *model.SchemeTotals) any { return t.ClaimsApproved }),
		"totalPayout":     prop(func(t *model.SchemeTotals) any { return t.TotalPayout }),
	}
}

func (r *Resolver) schemeFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"id":          prop(func(s *model.Scheme) any { return s.ID }),
		"name":        prop(func(s *model.Scheme) any { return s.Name }),
		"description": prop(func(s *model.Scheme) any { return optional(s.Description) }),
		"startDate":   prop(func(s *model.Scheme) any { return s.StartDate }),
		"endDate":     prop(func(s *model.Scheme) any { return optional(s.EndDate) }),
		"active":      prop(func(s *model.Scheme) any { return s.Active }),
		"totals":      prop(func(s *model.Scheme) any { return s.Totals }),
		"claims":      on(r.schemeClaims),
		"createdAt":   prop(func(s *model.Scheme) any { return s.CreatedAt }),
		"updatedAt":   prop(func(s *model.Scheme) any { return s.UpdatedAt }),
	}
}

// schemeClaims lists the claims of a scheme the caller may see, optionally
// narrowed to one status
func (r *Resolver) schemeClaims(ctx context.Context, s *model.Scheme, args map[string]any) (any, error) {
	status, err := stringArg(args, "status")
	if err != nil {
		return nil, err
	}
	claims, err := r.loaders(ctx).ClaimsBySchemeLoader.Load(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*model.ExpenseClaim, 0, len(claims))
	for _, c := range claims {
		if status != "" && c.Status != types.ClaimStatus(status) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Resolver) claimFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"id": prop(func(c *model.ExpenseClaim) any { return c.ID }),
		"scheme": on(func(ctx context.Context, c *model.ExpenseClaim, _ map[string]any) (any, error) {
			return r.loaders(ctx).SchemeLoader.Load(ctx, c.SchemeID)
		}),
		"userId":      prop(func(c *model.ExpenseClaim) any { return c.UserID }),
		"type":        prop(func(c *model.ExpenseClaim) any { return c.Type }),
		"date":        prop(func(c *model.ExpenseClaim) any { return c.Date }),
		"amount":      prop(func(c *model.ExpenseClaim) any { return c.Amount }),
		"description": prop(func(c *model.ExpenseClaim) any { return optional(c.Description) }),
		"status":      prop(func(c *model.ExpenseClaim) any { return c.Status }),
		"attachments": prop(func(c *model.ExpenseClaim) any { return c.Attachments }),
		"createdBy":   prop(func(c *model.ExpenseClaim) any { return optional(c.CreatedBy) }),
		"updatedBy":   prop(func(c *model.ExpenseClaim) any { return optional(c.UpdatedBy) }),
		"createdAt":   prop(func(c *model.ExpenseClaim) any { return c.CreatedAt }),
		"updatedAt":   prop(func(c *model.ExpenseClaim) any { return c.UpdatedAt }),
	}
}

func (r *Resolver) targetLineFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"productId": prop(func(l *model.TargetLine) any { return l.ProductID }),
		"product": on(func(ctx context.Context, l *model.TargetLine, _ map[string]any) (any, error) {
			return r.loaders(ctx).RecordLoader.Load(ctx, productEntity, model.RecordID(l.ProductID))
		}),
		"quantity": prop(func(l *model.TargetLine) any { return l.Quantity }),
		"amount":   prop(func(l *model.TargetLine) any { return l.Amount }),
		"achieved": prop(func(l *model.TargetLine) any { return l.Achieved }),
	}
}

func targetSummaryFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"lines":         prop(func(s *model.TargetSummary) any { return s.Lines }),
		"totalQuantity": prop(func(s *model.TargetSummary) any { return s.TotalQuantity }),
		"totalAmount":   prop(func(s *model.TargetSummary) any { return s.TotalAmount }),
		"totalAchieved": prop(func(s *model.TargetSummary) any { return s.TotalAchieved }),
		"achievement":   prop(func(s *model.TargetSummary) any { return s.Achievement }),
	}
}

func (r *Resolver) targetFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"id":          prop(func(t *usecase.TargetView) any { return t.ID }),
		"userId":      prop(func(t *usecase.TargetView) any { return t.UserID }),
		"territoryId": prop(func(t *usecase.TargetView) any { return t.TerritoryID }),
		"territory": on(func(ctx context.Context, t *usecase.TargetView, _ map[string]any) (any, error) {
			return r.loaders(ctx).RecordLoader.Load(ctx, territoryEntity, model.RecordID(t.TerritoryID))
		}),
		"period":    prop(func(t *usecase.TargetView) any { return t.Period }),
		"lines":     prop(func(t *usecase.TargetView) any { return t.Lines }),
		"summary":   prop(func(t *usecase.TargetView) any { return t.Summary }),
		"status":    prop(func(t *usecase.TargetView) any { return t.Status }),
		"createdAt": prop(func(t *usecase.TargetView) any { return t.CreatedAt }),
		"updatedAt": prop(func(t *usecase.TargetView) any { return t.UpdatedAt }),
	}
}

func recordResultFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"record":       prop(func(res *usecase.Result[*model.Record]) any { return res.Data }),
		"notification": prop(func(res *usecase.Result[*model.Record]) any { return res.Notification }),
	}
}

func claimResultFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"claim":        prop(func(res *usecase.Result[*model.ExpenseClaim]) any { return res.Data }),
		"notification": prop(func(res *usecase.Result[*model.ExpenseClaim]) any { return res.Notification }),
	}
}

func schemeResultFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"scheme":       prop(func(res *usecase.Result[*model.Scheme]) any { return res.Data }),
		"notification": prop(func(res *usecase.Result[*model.Scheme]) any { return res.Notification }),
	}
}

func targetResultFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"target":       prop(func(res *usecase.Result[*usecase.TargetView]) any { return res.Data }),
		"notification": prop(func(res *usecase.Result[*usecase.TargetView]) any { return res.Notification }),
	}
}

func deleteResultFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"id":           prop(func(d *deleted) any { return d.ID }),
		"notification": prop(func(d *deleted) any { return d.Notification }),
	}
}
