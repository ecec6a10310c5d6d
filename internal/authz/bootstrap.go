package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// manager 拥有全部后台权限，kitchen 聚焦厨房出餐，waiter 负责前厅点单与预订
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "manager",
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role: "kitchen",
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/focus", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/orders/:id/status", Action: "POST"},
				{Object: "/admin/orders/:id/delay", Action: "POST"},
				{Object: "/admin/orders/:id/focus", Action: "POST"},
				{Object: "/admin/orders/:id/focus", Action: "DELETE"},
				{Object: "/admin/menu-items", Action: "GET"},
				{Object: "/admin/menu-items/:id", Action: "GET"},
				{Object: "/admin/menu-items/:id/availability", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role: "waiter",
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/focus", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/orders/:id/status", Action: "POST"},
				{Object: "/admin/orders/:id/cancel", Action: "POST"},
				{Object: "/admin/orders/:id/focus", Action: "POST"},
				{Object: "/admin/orders/:id/focus", Action: "DELETE"},
				{Object: "/admin/orders/:id/payments", Action: "GET"},
				{Object: "/admin/orders/:id/payments", Action: "POST"},
				{Object: "/admin/reservations", Action: "GET"},
				{Object: "/admin/reservations/:id", Action: "GET"},
				{Object: "/admin/reservations/:id/table", Action: "POST"},
				{Object: "/admin/reservations/:id/seat", Action: "POST"},
				{Object: "/admin/reservations/:id/complete", Action: "POST"},
				{Object: "/admin/reservations/:id/no-show", Action: "POST"},
				{Object: "/admin/tables", Action: "GET"},
				{Object: "/admin/tables/:id/status", Action: "POST"},
				{Object: "/admin/menu-items", Action: "GET"},
				{Object: "/admin/menu-items/:id", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
