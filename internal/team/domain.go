// Package team manages dashboard users. Only admins reach it.
package team

import (
	"errors"
	"sort"

	"github.com/fairdesk/fairdesk/internal/rbac"
)

// ErrAdminProtected is returned for any attempt to delete an admin.
var ErrAdminProtected = errors.New("admin accounts cannot be removed")

// Member is one dashboard user.
type Member struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
	Status string    `json:"status,omitempty"`
}

// Protected reports whether m may never be deleted or demoted.
func (m Member) Protected() bool {
	return m.Role == rbac.RoleAdmin
}

// Input is the invite form. Admins cannot be created from the dashboard.
type Input struct {
	Name  string    `json:"name" form:"name" validate:"required,max=255"`
	Email string    `json:"email" form:"email" validate:"required,email"`
	Role  rbac.Role `json:"role" form:"role" validate:"required,oneof=manager sales"`
}

// AssignableRoles lists the roles offered on the invite form.
func AssignableRoles() []rbac.Role {
	return []rbac.Role{rbac.RoleManager, rbac.RoleSales}
}

// AdminsFirst moves admins to the top and keeps the order otherwise.
func AdminsFirst(items []Member) []Member {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Protected() && !items[j].Protected()
	})
	return items
}
