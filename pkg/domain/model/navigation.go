package model

import (
	"slices"

	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// NavItem is one entry of the application menu. An item with no roles is
// visible to everyone.
type NavItem struct {
	Path     string       `json:"path,omitempty"`
	Label    string       `json:"label"`
	Icon     string       `json:"icon,omitempty"`
	Roles    []types.Role `json:"roles,omitempty"`
	Children []NavItem    `json:"children,omitempty"`
}

// FilterNavigation returns the items role may see. Groups without a path are
// dropped when none of their children remain.
func FilterNavigation(items []NavItem, role types.Role) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if len(item.Roles) > 0 && !slices.Contains(item.Roles, role) {
			continue
		}
		visible := item
		visible.Roles = nil
		if len(item.Children) > 0 {
			visible.Children = FilterNavigation(item.Children, role)
			if len(visible.Children) == 0 && item.Path == "" {
				continue
			}
		}
		out = append(out, visible)
	}
	return out
}

// DefaultNavigation returns the built-in menu
func DefaultNavigation() []NavItem {
	managers := []types.Role{types.RoleAdmin, types.RoleManager}
	return []NavItem{
		{Path: "/", Label: "Dashboard", Icon: "home"},
		{Label: "Master Data", Icon: "database", Roles: managers, Children: []NavItem{
			{Path: "/master/countries", Label: "Countries"},
			{Path: "/master/states", Label: "States"},
			{Path: "/master/cities", Label: "Cities"},
			{Path: "/master/zones", Label: "Zones"},
			{Path: "/master/territories", Label: "Territories"},
			{Path: "/master/warehouses", Label: "Warehouses"},
			{Path: "/master/categories", Label: "Categories"},
			{Path: "/master/products", Label: "Products"},
			{Path: "/master/presentations", Label: "Presentations"},
		}},
		{Label: "Sales", Icon: "chart", Children: []NavItem{
			{Path: "/targets", Label: "Targets"},
			{Path: "/schemes", Label: "Schemes", Roles: managers},
			{Path: "/expense-claims", Label: "Expense Claims", Roles: []types.Role{types.RoleAdmin, types.RoleManager, types.RoleSalesRep}},
		}},
		{Label: "Reports", Icon: "report", Roles: managers, Children: []NavItem{
			{Path: "/reports/sales/daily", Label: "Daily Sales"},
			{Path: "/reports/expenses", Label: "Expenses"},
		}},
		{Path: "/settings", Label: "Settings", Icon: "settings", Roles: []types.Role{types.RoleAdmin}},
	}
}
