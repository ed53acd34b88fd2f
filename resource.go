package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// Canonical CRUD action names. Instance-scoped actions apply to one resource;
// type-scoped actions apply to a resource type as a whole.
const (
	ActionView   = "view"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionCreate    = "create"
	ActionViewAny   = "viewAny"
	ActionUpdateAny = "updateAny"
	ActionDeleteAny = "deleteAny"

	ActionRestore     = "restore"
	ActionForceDelete = "forceDelete"
)

// InstanceCrudActions is the action tuple generated for one resource
// instance.
var InstanceCrudActions = []string{ActionView, ActionUpdate, ActionDelete}

// TypeCrudActions is the action tuple generated for a resource type as a
// whole.
var TypeCrudActions = []string{ActionCreate, ActionViewAny, ActionUpdateAny, ActionDeleteAny}

// crudActionsFor picks the action tuple matching the resource's scope.
func crudActionsFor(r Resource) []string {
	if r.ResourceID() == "" {
		return TypeCrudActions
	}
	return InstanceCrudActions
}

// ResourcePermissionName builds the canonical permission name for an action
// on a resource: "<prefix>.<action>".
func ResourcePermissionName(r Resource, action string) string {
	return prefixFor(r) + "." + action
}

// ============================================================================
// RESOURCE PERMISSIONS
// ============================================================================

// CreateResourcePermission creates the permission for an action on a
// resource, or returns the existing row (first-or-create). The permission is
// instance-scoped when the resource carries an id, type-scoped otherwise.
//
// Example:
//
//	p, err := service.CreateResourcePermission(ctx, article, aclkit.ActionView)
//	// p.Name == "article.view", scoped to article's type and id
func (s *Service) CreateResourcePermission(ctx context.Context, r Resource, action string) (*Permission, error) {
	permissions, err := s.CreateResourcePermissions(ctx, r, action)
	if err != nil {
		return nil, err
	}
	return &permissions[0], nil
}

// CreateResourcePermissions first-or-creates the permissions for several
// actions on a resource as one batched lookup plus at most one batched
// insert.
func (s *Service) CreateResourcePermissions(ctx context.Context, r Resource, actions ...string) ([]Permission, error) {
	if len(actions) == 0 {
		return nil, NewError(ErrInvalidArgument, "no actions given")
	}

	toCreate := make([]*Permission, len(actions))
	for i, action := range actions {
		toCreate[i] = &Permission{
			Name:         ResourcePermissionName(r, action),
			ResourceType: r.ResourceType(),
			ResourceID:   r.ResourceID(),
		}
	}

	// The conflict target mirrors the unique index over the nullable scope
	// columns, so re-creating is a no-op rather than an error.
	result, err := s.db.NewInsert().Model(&toCreate).
		On("CONFLICT (name, COALESCE(resource_type, ''), COALESCE(resource_id, '')) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreateResourcePermissions").Err(); err != nil {
		return nil, err
	}

	return s.GetResourcePermissions(ctx, r, actions...)
}

// GetResourcePermission returns the permission for an action on a resource,
// or nil if it was never created.
func (s *Service) GetResourcePermission(ctx context.Context, r Resource, action string) (*Permission, error) {
	permissions, err := s.GetResourcePermissions(ctx, r, action)
	if err != nil {
		return nil, err
	}
	if len(permissions) == 0 {
		return nil, nil
	}
	return &permissions[0], nil
}

// GetResourcePermissions returns the existing permissions for the given
// actions on a resource. Never-created actions are simply absent.
func (s *Service) GetResourcePermissions(ctx context.Context, r Resource, actions ...string) ([]Permission, error) {
	if len(actions) == 0 {
		return nil, NewError(ErrInvalidArgument, "no actions given")
	}

	names := make([]string, len(actions))
	ids := make([]string, len(actions))
	for i, action := range actions {
		names[i] = ResourcePermissionName(r, action)
		ids[i] = r.ResourceID()
	}
	return s.GetPermissionsByName(ctx, names, r.ResourceType(), ids)
}

// DeleteResourcePermission deletes the permission for an action on a
// resource. Deleting a never-created permission is a no-op.
func (s *Service) DeleteResourcePermission(ctx context.Context, r Resource, action string) error {
	return s.DeleteResourcePermissionsFor(ctx, r, action)
}

// DeleteResourcePermissionsFor deletes the permissions for the given actions
// on a resource.
func (s *Service) DeleteResourcePermissionsFor(ctx context.Context, r Resource, actions ...string) error {
	permissions, err := s.GetResourcePermissions(ctx, r, actions...)
	if err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}

	result, err := s.db.NewDelete().Table("acl_permissions").
		Where("id IN (?)", bun.In(permissionIDs(permissions))).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteResourcePermissionsFor").Err()
}

// GrantResourcePermission grants the permission for an action on a resource
// to a subject. The permission must have been created first.
func (s *Service) GrantResourcePermission(ctx context.Context, r Resource, action string, sub Subject) error {
	return s.GrantResourcePermissions(ctx, r, sub, action)
}

// GrantResourcePermissions grants the permissions for several actions on a
// resource to a subject in one batch.
func (s *Service) GrantResourcePermissions(ctx context.Context, r Resource, sub Subject, actions ...string) error {
	refs := make([]PermissionRef, len(actions))
	for i, action := range actions {
		refs[i] = PermFor(ResourcePermissionName(r, action), r.ResourceType(), r.ResourceID())
	}
	return s.AddPermissions(ctx, sub, refs...)
}

// RevokeResourcePermission revokes the permission for an action on a
// resource from a subject.
func (s *Service) RevokeResourcePermission(ctx context.Context, r Resource, action string, sub Subject) error {
	return s.RevokeResourcePermissions(ctx, r, sub, action)
}

// RevokeResourcePermissions revokes the permissions for several actions on a
// resource from a subject in one batch.
func (s *Service) RevokeResourcePermissions(ctx context.Context, r Resource, sub Subject, actions ...string) error {
	refs := make([]PermissionRef, len(actions))
	for i, action := range actions {
		refs[i] = PermFor(ResourcePermissionName(r, action), r.ResourceType(), r.ResourceID())
	}
	return s.DelPermissions(ctx, sub, refs...)
}

// ============================================================================
// CRUD BUNDLES
// ============================================================================

// CreateCrudPermissions first-or-creates the CRUD tuple for a resource:
// {view, update, delete} when the resource carries an instance id,
// {create, viewAny, updateAny, deleteAny} for a type-level resource. One
// batched round trip either way.
func (s *Service) CreateCrudPermissions(ctx context.Context, r Resource) ([]Permission, error) {
	return s.CreateResourcePermissions(ctx, r, crudActionsFor(r)...)
}

// GetCrudPermissions returns the existing CRUD tuple for a resource.
func (s *Service) GetCrudPermissions(ctx context.Context, r Resource) ([]Permission, error) {
	return s.GetResourcePermissions(ctx, r, crudActionsFor(r)...)
}

// DeleteCrudPermissions deletes the CRUD tuple for a resource.
func (s *Service) DeleteCrudPermissions(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermissionsFor(ctx, r, crudActionsFor(r)...)
}

// GrantCrudPermissions grants the CRUD tuple for a resource to a subject.
func (s *Service) GrantCrudPermissions(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermissions(ctx, r, sub, crudActionsFor(r)...)
}

// RevokeCrudPermissions revokes the CRUD tuple for a resource from a
// subject.
func (s *Service) RevokeCrudPermissions(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermissions(ctx, r, sub, crudActionsFor(r)...)
}

// ============================================================================
// RESOURCE DELETION CLEANUP
// ============================================================================

// DeleteResourceInstancePermissions removes every permission bound to one
// resource instance. The polymorphic resource id carries no foreign key, so
// call this from the resource's deletion path; grant rows cascade with the
// permissions.
func (s *Service) DeleteResourceInstancePermissions(ctx context.Context, r Resource) error {
	if r.ResourceID() == "" {
		return NewError(ErrPrecondition, "resource carries no instance id").
			WithResource(r.ResourceType(), "")
	}
	result, err := s.db.NewDelete().Table("acl_permissions").
		Where("resource_type = ? AND resource_id = ?", r.ResourceType(), r.ResourceID()).
		Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteResourceInstancePermissions").Err()
}

// DeleteResourceTypePermissions removes every permission of a resource type,
// both type-scoped and instance-scoped rows. Call it when retiring the type.
func (s *Service) DeleteResourceTypePermissions(ctx context.Context, resourceType string) error {
	result, err := s.db.NewDelete().Table("acl_permissions").
		Where("resource_type = ?", resourceType).
		Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteResourceTypePermissions").Err()
}
