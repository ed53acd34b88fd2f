package aclkit

// PermissionRef identifies a permission by exactly one of: a resolved entity,
// a primary key, or a name with optional resource scope. Refs are a typed
// replacement for the mixed string/id/entity arguments a dynamic ACL layer
// would accept; the engine batch-resolves them to canonical rows before
// touching the association tables.
type PermissionRef struct {
	entity *Permission
	id     string
	name   string

	resourceType string
	resourceID   string
	scoped       bool
}

// PermByName references a permission by name, unscoped. Matches permissions
// of that name regardless of resource scope.
func PermByName(name string) PermissionRef {
	return PermissionRef{name: name}
}

// PermFor references a permission by name within a resource scope. An empty
// resourceID targets the type-scoped permission (resource_id IS NULL).
func PermFor(name, resourceType, resourceID string) PermissionRef {
	return PermissionRef{name: name, resourceType: resourceType, resourceID: resourceID, scoped: true}
}

// PermByID references a permission by primary key.
func PermByID(id string) PermissionRef {
	return PermissionRef{id: id}
}

// Perm references an already-resolved permission entity.
func Perm(p Permission) PermissionRef {
	return PermissionRef{entity: &p}
}

// PermsByName builds name refs for each of the given names.
func PermsByName(names ...string) []PermissionRef {
	refs := make([]PermissionRef, len(names))
	for i, n := range names {
		refs[i] = PermByName(n)
	}
	return refs
}

// Perms builds entity refs for each of the given permissions.
func Perms(permissions ...Permission) []PermissionRef {
	refs := make([]PermissionRef, len(permissions))
	for i, p := range permissions {
		refs[i] = Perm(p)
	}
	return refs
}

// RoleRef identifies a role by exactly one of: a resolved entity, a primary
// key, or a name.
type RoleRef struct {
	entity *Role
	id     string
	name   string
}

// RoleByName references a role by name.
func RoleByName(name string) RoleRef {
	return RoleRef{name: name}
}

// RoleByID references a role by primary key.
func RoleByID(id string) RoleRef {
	return RoleRef{id: id}
}

// RoleOf references an already-resolved role entity.
func RoleOf(r Role) RoleRef {
	return RoleRef{entity: &r}
}

// RolesByName builds name refs for each of the given names.
func RolesByName(names ...string) []RoleRef {
	refs := make([]RoleRef, len(names))
	for i, n := range names {
		refs[i] = RoleByName(n)
	}
	return refs
}

// Roles builds entity refs for each of the given roles.
func Roles(roles ...Role) []RoleRef {
	refs := make([]RoleRef, len(roles))
	for i, r := range roles {
		refs[i] = RoleOf(r)
	}
	return refs
}
