package aclkit

import "context"

// Checker is an in-memory snapshot of one subject's effective access: its
// role names plus the union of direct and role-held permissions, loaded in a
// fixed number of queries by GetChecker. All checks after that are pure map
// lookups, which makes it the right shape for request handlers that decide
// several times against the same subject.
//
// The snapshot does not observe grants made after it was taken.
type Checker struct {
	subject     SubjectRef
	permissions []Permission
	roleNames   []string
	byKey       map[permissionKey]struct{}
	roles       map[string]struct{}
}

type permissionKey struct {
	name         string
	resourceType string
	resourceID   string
}

// GetChecker loads a subject's effective permissions and role names and
// returns a Checker over them.
//
// Example:
//
//	checker, err := service.GetChecker(ctx, user)
//	if err != nil {
//	    return err
//	}
//	if checker.Can(aclkit.ActionUpdate, article) {
//	    // ...
//	}
func (s *Service) GetChecker(ctx context.Context, sub Subject) (*Checker, error) {
	permissions, err := s.GetPermissions(ctx, sub)
	if err != nil {
		return nil, err
	}
	roleNames, err := s.GetRoleNames(ctx, sub)
	if err != nil {
		return nil, err
	}
	return NewChecker(refOf(sub), permissions, roleNames), nil
}

// NewChecker builds a Checker from an already-loaded effective set.
func NewChecker(subject SubjectRef, permissions []Permission, roleNames []string) *Checker {
	c := &Checker{
		subject:     subject,
		permissions: permissions,
		roleNames:   roleNames,
		byKey:       make(map[permissionKey]struct{}, len(permissions)),
		roles:       make(map[string]struct{}, len(roleNames)),
	}
	for _, p := range permissions {
		c.byKey[permissionKey{p.Name, p.ResourceType, p.ResourceID}] = struct{}{}
	}
	for _, name := range roleNames {
		c.roles[name] = struct{}{}
	}
	return c
}

// Subject returns the subject this checker was loaded for.
func (c *Checker) Subject() SubjectRef {
	return c.subject
}

// HasPermissionName checks for a permission by bare name, ignoring resource
// scope.
//
// Example:
//
//	if checker.HasPermissionName("reports.export") {
//	    // ...
//	}
func (c *Checker) HasPermissionName(name string) bool {
	for _, p := range c.permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// HasResourcePermission checks for a permission with an exact resource
// scope. Empty type and id mean the unscoped permission.
func (c *Checker) HasResourcePermission(name, resourceType, resourceID string) bool {
	_, ok := c.byKey[permissionKey{name, resourceType, resourceID}]
	return ok
}

// Can decides an action on a resource against the snapshot, with the same
// candidate expansion as Service.Can.
//
// Example:
//
//	if checker.Can(aclkit.ActionDelete, article) {
//	    // holds "article.delete" on this article or "article.deleteAny"
//	}
func (c *Checker) Can(action string, r Resource) bool {
	for _, ref := range decisionCandidates(r, action) {
		for _, p := range c.permissions {
			if ref.matches(&p) {
				return true
			}
		}
	}
	return false
}

// HasRole checks for a role by name.
func (c *Checker) HasRole(name string) bool {
	_, ok := c.roles[name]
	return ok
}

// HasAnyRole checks whether the subject holds at least one of the names.
func (c *Checker) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if c.HasRole(name) {
			return true
		}
	}
	return false
}

// HasAllRoles checks whether the subject holds every one of the names.
func (c *Checker) HasAllRoles(names ...string) bool {
	for _, name := range names {
		if !c.HasRole(name) {
			return false
		}
	}
	return true
}

// Permissions returns the effective permission set the checker was loaded
// with.
func (c *Checker) Permissions() []Permission {
	return c.permissions
}

// PermissionNames returns the distinct names in the effective set.
func (c *Checker) PermissionNames() []string {
	return PermissionNames(c.permissions)
}

// RoleNames returns the subject's role names.
func (c *Checker) RoleNames() []string {
	return c.roleNames
}

// AccessibleResourceIDs returns the ids of a resource type the snapshot
// grants the action on. Type-wide "<action>Any" does not enumerate ids; use
// Can for the type-level decision.
func (c *Checker) AccessibleResourceIDs(resourceType, action string) []string {
	suffix := "." + action
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range c.permissions {
		if p.ResourceType != resourceType || p.ResourceID == "" {
			continue
		}
		if len(p.Name) <= len(suffix) || p.Name[len(p.Name)-len(suffix):] != suffix {
			continue
		}
		if _, ok := seen[p.ResourceID]; ok {
			continue
		}
		seen[p.ResourceID] = struct{}{}
		ids = append(ids, p.ResourceID)
	}
	return ids
}

// IsEmpty reports whether the subject holds no permissions and no roles.
func (c *Checker) IsEmpty() bool {
	return len(c.permissions) == 0 && len(c.roleNames) == 0
}
