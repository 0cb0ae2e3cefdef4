// Package access centralizes role-based route gating. The storefront used
// to re-check the role string on every page; here the policy is resolved
// once per request at the routing layer.
package access

import "strings"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSeller    Role = "SELLER"
	RoleCustomer  Role = "CUSTOMER"
	RoleAnonymous Role = "ANONYMOUS"
)

// RoleFromString normalizes the upstream role field. Unknown or empty
// roles degrade to anonymous.
func RoleFromString(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSeller:
		return RoleSeller
	case RoleCustomer:
		return RoleCustomer
	default:
		return RoleAnonymous
	}
}

// Policy is what a role may reach. Route matching is by path prefix.
type Policy struct {
	role     Role
	prefixes []string
}

func (p Policy) Role() Role { return p.role }

func (p Policy) CanAccess(route string) bool {
	for _, pfx := range p.prefixes {
		if route == pfx || strings.HasPrefix(route, pfx+"/") {
			return true
		}
	}
	return false
}

var openRoutes = []string{"/healthz", "/login", "/register", "/shop"}

var policies = map[Role]Policy{
	RoleAnonymous: {
		role:     RoleAnonymous,
		prefixes: openRoutes,
	},
	RoleCustomer: {
		role:     RoleCustomer,
		prefixes: append([]string{"/cart", "/checkout", "/orders", "/profile", "/dashboard"}, openRoutes...),
	},
	RoleSeller: {
		role:     RoleSeller,
		prefixes: append([]string{"/seller", "/profile", "/dashboard"}, openRoutes...),
	},
	RoleAdmin: {
		role:     RoleAdmin,
		prefixes: append([]string{"/admin", "/users", "/profile", "/dashboard"}, openRoutes...),
	},
}

// For returns the policy variant for a role.
func For(role Role) Policy {
	if p, ok := policies[role]; ok {
		return p
	}
	return policies[RoleAnonymous]
}
