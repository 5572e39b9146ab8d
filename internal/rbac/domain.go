// Package rbac maps roles to the dashboard tabs they may open.
package rbac

import (
	"slices"
	"strings"
)

// Role is an authorization role carried in the access token.
type Role string

// Supported roles.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

// Tab identifies one dashboard view.
type Tab string

// Dashboard tabs.
const (
	TabExhibitors Tab = "exhibitors"
	TabVisitors   Tab = "visitors"
	TabEvents     Tab = "events"
	TabCategories Tab = "categories"
	TabGallery    Tab = "gallery"
	TabTeam       Tab = "team"
)

// The first entry of each list is the role's landing tab.
var table = map[Role][]Tab{
	RoleAdmin:   {TabExhibitors, TabVisitors, TabEvents, TabCategories, TabGallery, TabTeam},
	RoleManager: {TabExhibitors, TabVisitors, TabEvents, TabCategories, TabGallery},
	RoleSales:   {TabExhibitors, TabVisitors},
}

// Roles lists the supported roles in privilege order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleSales}
}

// ParseRole normalises s and reports whether it names a supported role.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := table[role]
	return role, ok
}

// Valid reports whether r is a supported role.
func (r Role) Valid() bool {
	_, ok := table[r]
	return ok
}

// AllowedTabs returns the ordered tabs for role, or nil for an unsupported role.
func AllowedTabs(role Role) []Tab {
	tabs, ok := table[role]
	if !ok {
		return nil
	}
	return slices.Clone(tabs)
}

// IsAllowed reports whether role may open tab.
func IsAllowed(role Role, tab Tab) bool {
	return slices.Contains(table[role], tab)
}

// DefaultTab returns role's landing tab.
func DefaultTab(role Role) (Tab, bool) {
	tabs := table[role]
	if len(tabs) == 0 {
		return "", false
	}
	return tabs[0], true
}

// ResolveTab picks the active tab for a requested one. rewrite is true when
// the requested value was missing, unknown or not allowed and the caller
// must replace the URL with the returned tab.
func ResolveTab(role Role, requested string) (active Tab, rewrite bool) {
	tab := Tab(strings.ToLower(strings.TrimSpace(requested)))
	if IsAllowed(role, tab) {
		return tab, string(tab) != requested
	}
	fallback, _ := DefaultTab(role)
	return fallback, true
}
