package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DATA RETRIEVAL
// ============================================================================

// RoleMembers retrieves every subject holding a role.
//
// Example:
//
//	members, err := service.RoleMembers(ctx, aclkit.RoleByName("admin"))
func (s *Service) RoleMembers(ctx context.Context, ref RoleRef) ([]SubjectRef, error) {
	roles, err := s.resolveRoles(ctx, []RoleRef{ref})
	if err != nil {
		return nil, err
	}

	var memberships []HolderRole
	err = dbkit.WithErr1(s.db.NewSelect().Model(&memberships).
		Where("role_id = ?", roles[0].ID).
		Scan(ctx), "RoleMembers").Err()
	if err != nil {
		return nil, err
	}

	members := make([]SubjectRef, len(memberships))
	for i, m := range memberships {
		members[i] = NewSubject(m.HolderType, m.HolderID)
	}
	return members, nil
}

// RoleMemberCount counts the subjects holding a role.
func (s *Service) RoleMemberCount(ctx context.Context, ref RoleRef) (int, error) {
	roles, err := s.resolveRoles(ctx, []RoleRef{ref})
	if err != nil {
		return 0, err
	}
	return dbkit.Count[HolderRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("role_id = ?", roles[0].ID)
	})
}

// GetRolePermissions retrieves the permissions a role grants. A role's own
// grants are direct grants under its subject key.
//
// Example:
//
//	permissions, err := service.GetRolePermissions(ctx, aclkit.RoleByName("editor"))
func (s *Service) GetRolePermissions(ctx context.Context, ref RoleRef) ([]Permission, error) {
	roles, err := s.resolveRoles(ctx, []RoleRef{ref})
	if err != nil {
		return nil, err
	}
	return s.GetDirectPermissions(ctx, &roles[0])
}

// GetCheckerFromContext creates a Checker for the subject stored in context.
func (s *Service) GetCheckerFromContext(ctx context.Context) (*Checker, error) {
	ref, ok := SubjectFromContext(ctx)
	if !ok {
		return nil, NewError(ErrInvalidArgument, "no subject in context")
	}
	return s.GetChecker(ctx, ref)
}
