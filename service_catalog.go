package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PERMISSION CATALOG
// ============================================================================

// GetPermissionsByName looks permissions up by name.
//
// With resourceIDs nil this is a group lookup: every permission whose name is
// in names, optionally filtered by resourceType. With resourceIDs given, its
// length must equal len(names); the two are paired positionally and the query
// becomes a disjunction of (name_i AND resource_id_i), where an empty id
// targets the type-scoped row (resource_id IS NULL).
//
// The lookup is lenient: names that match nothing are simply absent from the
// result.
func (s *Service) GetPermissionsByName(ctx context.Context, names []string, resourceType string, resourceIDs []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, NewError(ErrInvalidArgument, "no permission names given")
	}
	if resourceIDs != nil && len(resourceIDs) != len(names) {
		return nil, NewError(ErrInvalidArgument, "number of permission names and resource ids must match")
	}

	var permissions []Permission
	q := s.db.NewSelect().Model(&permissions)
	if resourceType != "" {
		q = q.Where("p.resource_type = ?", resourceType)
	}

	if resourceIDs == nil {
		q = q.Where("p.name IN (?)", bun.In(names))
	} else {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for i, name := range names {
				if resourceIDs[i] == "" {
					q = q.WhereOr("(p.name = ? AND p.resource_id IS NULL)", name)
				} else {
					q = q.WhereOr("(p.name = ? AND p.resource_id = ?)", name, resourceIDs[i])
				}
			}
			return q
		})
	}

	err := dbkit.WithErr1(q.Scan(ctx), "GetPermissionsByName").Err()
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

// ResourceIDs extracts the ids of the given resources, for pairing with a
// name list in GetPermissionsByName.
func ResourceIDs(resources ...Resource) []string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ResourceID()
	}
	return ids
}

// CreatePermission creates a single global permission with the given name.
func (s *Service) CreatePermission(ctx context.Context, name string) (*Permission, error) {
	permissions, err := s.CreatePermissions(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return &permissions[0], nil
}

// CreatePermissions bulk-creates global permissions, one row per name, in a
// single insert, and returns the created rows re-queried by name.
func (s *Service) CreatePermissions(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}

	toCreate := make([]*Permission, len(names))
	for i, name := range names {
		toCreate[i] = &Permission{Name: name}
	}

	result, err := s.db.NewInsert().Model(&toCreate).Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreatePermissions").Err(); err != nil {
		return nil, err
	}

	return s.GetPermissionsByName(ctx, names, "", nil)
}

// DeletePermission deletes a single referenced permission.
func (s *Service) DeletePermission(ctx context.Context, ref PermissionRef) error {
	return s.DeletePermissions(ctx, ref)
}

// DeletePermissions deletes the referenced permissions. Grant rows referring
// to them are removed by the store's cascade.
func (s *Service) DeletePermissions(ctx context.Context, refs ...PermissionRef) error {
	permissions, err := s.resolvePermissions(ctx, refs, true)
	if err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}

	result, err := s.db.NewDelete().Table("acl_permissions").
		Where("id IN (?)", bun.In(permissionIDs(permissions))).Exec(ctx)
	return dbkit.WithErr(result, err, "DeletePermissions").Err()
}

// CountAllPermissions returns the total number of permissions in the catalog.
func (s *Service) CountAllPermissions(ctx context.Context) (int, error) {
	return dbkit.Count[Permission](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// ============================================================================
// ROLE CATALOG
// ============================================================================

// CreateRole creates a single role with the given name.
func (s *Service) CreateRole(ctx context.Context, name string) (*Role, error) {
	roles, err := s.CreateRoles(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return &roles[0], nil
}

// CreateRoles bulk-creates roles, one row per name, in a single insert, and
// returns the created rows re-queried by name.
func (s *Service) CreateRoles(ctx context.Context, names []string) ([]Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	toCreate := make([]*Role, len(names))
	for i, name := range names {
		toCreate[i] = &Role{Name: name}
	}

	result, err := s.db.NewInsert().Model(&toCreate).Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreateRoles").Err(); err != nil {
		return nil, err
	}

	return s.GetRolesByName(ctx, names)
}

// GetRolesByName looks roles up by name. Unlike the permission lookup this is
// strict: every name must resolve to an existing role.
func (s *Service) GetRolesByName(ctx context.Context, names []string) ([]Role, error) {
	return s.resolveRoles(ctx, RolesByName(names...))
}

// DeleteRole deletes a single referenced role.
func (s *Service) DeleteRole(ctx context.Context, ref RoleRef) error {
	return s.DeleteRoles(ctx, ref)
}

// DeleteRoles deletes the referenced roles. Assignment rows referring to
// them, and the roles' own grant rows, are removed (the former by the
// store's cascade, the latter explicitly since the grant table's subject key
// is polymorphic and carries no foreign key).
func (s *Service) DeleteRoles(ctx context.Context, refs ...RoleRef) error {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return err
	}
	ids := roleIDs(roles)

	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		result, err := tx.db.NewDelete().Table("acl_subject_permissions").
			Where("subject_type = ? AND subject_id IN (?)", SubjectTypeRole, bun.In(ids)).Exec(ctx)
		if err = dbkit.WithErr(result, err, "DeleteRoleGrants").Err(); err != nil {
			return err
		}

		result, err = tx.db.NewDelete().Table("acl_roles").
			Where("id IN (?)", bun.In(ids)).Exec(ctx)
		return dbkit.WithErr(result, err, "DeleteRoles").Err()
	})
}

// CountAllRoles returns the total number of roles in the catalog.
func (s *Service) CountAllRoles(ctx context.Context) (int, error) {
	return dbkit.Count[Role](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}
