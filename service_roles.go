package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ROLE ASSIGNMENT
// ============================================================================

// AddRole assigns a single role to a holder.
//
// Example:
//
//	err := service.AddRole(ctx, alice, aclkit.RoleByName("editor"))
func (s *Service) AddRole(ctx context.Context, holder Subject, ref RoleRef) error {
	return s.AddRoles(ctx, holder, ref)
}

// AddRoles assigns the referenced roles to a holder in one batch insert.
// Every reference must resolve to an existing role; unknown names are
// ErrNotFound. Assigning a role the holder already has fails on the
// membership table's composite key; use AddRoleDirect for an idempotent
// variant.
func (s *Service) AddRoles(ctx context.Context, holder Subject, refs ...RoleRef) error {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return err
	}

	toAdd := make([]*HolderRole, len(roles))
	for i, r := range roles {
		toAdd[i] = &HolderRole{
			HolderType: holder.SubjectType(),
			HolderID:   holder.SubjectID(),
			RoleID:     r.ID,
		}
	}

	result, err := s.db.NewInsert().Model(&toAdd).Exec(ctx)
	if err = dbkit.WithErr(result, err, "AddRoles").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionAssigned, holder, nil, RoleNames(roles))

	return nil
}

// AddRoleDirect assigns a single role, ignoring the duplicate-key conflict a
// concurrent or repeated assignment would hit. Reports ErrRoleAlreadyAssigned
// when the holder already had it.
func (s *Service) AddRoleDirect(ctx context.Context, holder Subject, ref RoleRef) error {
	roles, err := s.resolveRoles(ctx, []RoleRef{ref})
	if err != nil {
		return err
	}

	membership := &HolderRole{
		HolderType: holder.SubjectType(),
		HolderID:   holder.SubjectID(),
		RoleID:     roles[0].ID,
	}

	result, err := s.db.NewInsert().
		Model(membership).
		On("CONFLICT (holder_type, holder_id, role_id) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "AddRoleDirect").Err(); err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewError(ErrRoleAlreadyAssigned, "holder already has this role").
			WithSubject(holder).
			WithRole(roles[0].Name)
	}

	_ = s.logAudit(ctx, AuditActionAssigned, holder, nil, []string{roles[0].Name})

	return nil
}

// AddRolesWithRetry assigns roles with automatic retry on transient database
// errors.
func (s *Service) AddRolesWithRetry(ctx context.Context, holder Subject, refs ...RoleRef) error {
	return s.withRetry(ctx, 3, func(ctx context.Context) error {
		return s.AddRoles(ctx, holder, refs...)
	})
}

// DelRole revokes a single role from a holder.
func (s *Service) DelRole(ctx context.Context, holder Subject, ref RoleRef) error {
	return s.DelRoles(ctx, holder, ref)
}

// DelRoles revokes the referenced roles from a holder. Like every role
// operation, unknown role names are ErrNotFound.
func (s *Service) DelRoles(ctx context.Context, holder Subject, refs ...RoleRef) error {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return err
	}

	result, err := s.db.NewDelete().Table("acl_holder_roles").
		Where("holder_type = ? AND holder_id = ?", holder.SubjectType(), holder.SubjectID()).
		Where("role_id IN (?)", bun.In(roleIDs(roles))).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "DelRoles").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionUnassigned, holder, nil, RoleNames(roles))

	return nil
}

// DelAllRoles revokes every role of a holder.
func (s *Service) DelAllRoles(ctx context.Context, holder Subject) error {
	result, err := s.db.NewDelete().Table("acl_holder_roles").
		Where("holder_type = ? AND holder_id = ?", holder.SubjectType(), holder.SubjectID()).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "DelAllRoles").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionUnassigned, holder, nil, []string{"*"})

	return nil
}

// SetRole replaces a holder's role set with a single role.
func (s *Service) SetRole(ctx context.Context, holder Subject, ref RoleRef) error {
	return s.SetRoles(ctx, holder, ref)
}

// SetRoles replaces a holder's role set with the referenced roles. Runs as
// one transaction so concurrent readers never observe the empty window
// between delete and insert.
func (s *Service) SetRoles(ctx context.Context, holder Subject, refs ...RoleRef) error {
	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		if err := tx.DelAllRoles(ctx, holder); err != nil {
			return err
		}
		return tx.AddRoles(ctx, holder, refs...)
	})
}

// GetRoles returns the roles assigned to a holder.
func (s *Service) GetRoles(ctx context.Context, holder Subject) ([]Role, error) {
	var ids []string
	q := whereHolder(
		s.db.NewSelect().Model((*HolderRole)(nil)).Column("hr.role_id"), holder)
	if err := dbkit.WithErr1(q.Scan(ctx, &ids), "GetRoles").Err(); err != nil {
		return nil, err
	}
	return s.rolesByID(ctx, ids)
}

// GetRoleNames returns the names of the roles assigned to a holder.
func (s *Service) GetRoleNames(ctx context.Context, holder Subject) ([]string, error) {
	roles, err := s.GetRoles(ctx, holder)
	if err != nil {
		return nil, err
	}
	return RoleNames(roles), nil
}

// HasRole checks whether the holder has the referenced role. This is an
// existence probe, cheaper than GetRoles when only one role matters.
func (s *Service) HasRole(ctx context.Context, holder Subject, ref RoleRef) (bool, error) {
	roles, err := s.resolveRoles(ctx, []RoleRef{ref})
	if err != nil {
		return false, err
	}

	return dbkit.Exists[HolderRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return whereHolder(q, holder).Where("hr.role_id = ?", roles[0].ID)
	})
}

// HasRoles checks whether the holder has every referenced role.
func (s *Service) HasRoles(ctx context.Context, holder Subject, refs ...RoleRef) (bool, error) {
	n, m, err := s.hasHowManyRoles(ctx, holder, refs)
	if err != nil {
		return false, err
	}
	return n > 0 && m == n, nil
}

// HasAnyRole checks whether the holder has at least one of the referenced
// roles.
func (s *Service) HasAnyRole(ctx context.Context, holder Subject, refs ...RoleRef) (bool, error) {
	_, m, err := s.hasHowManyRoles(ctx, holder, refs)
	if err != nil {
		return false, err
	}
	return m > 0, nil
}

func (s *Service) hasHowManyRoles(ctx context.Context, holder Subject, refs []RoleRef) (requested, held int, err error) {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return 0, 0, err
	}

	held, err = dbkit.Count[HolderRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return whereHolder(q, holder).Where("hr.role_id IN (?)", bun.In(roleIDs(roles)))
	})
	if err != nil {
		return 0, 0, err
	}
	return len(roles), held, nil
}

// CountRoles returns the number of roles assigned to a holder.
func (s *Service) CountRoles(ctx context.Context, holder Subject) (int, error) {
	return dbkit.Count[HolderRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return whereHolder(q, holder)
	})
}

// CountAllAssignments returns the total number of role assignments in the
// system. Useful for monitoring and analytics.
func (s *Service) CountAllAssignments(ctx context.Context) (int, error) {
	return dbkit.Count[HolderRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// ============================================================================
// BULK CROSS-HOLDER OPERATIONS
// ============================================================================

// AddRolesToMany assigns every referenced role to every holder: one
// resolution, one batch insert spanning the full cross product.
//
// Sized for moderate fan-out (tens to low hundreds per side); chunk larger
// batches at the call site.
func (s *Service) AddRolesToMany(ctx context.Context, refs []RoleRef, holders []Subject) error {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return err
	}
	if len(holders) == 0 {
		return nil
	}

	toAdd := make([]*HolderRole, 0, len(roles)*len(holders))
	for _, holder := range holders {
		for _, r := range roles {
			toAdd = append(toAdd, &HolderRole{
				HolderType: holder.SubjectType(),
				HolderID:   holder.SubjectID(),
				RoleID:     r.ID,
			})
		}
	}

	names := RoleNames(roles)
	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		if _, err := dbkit.BatchInsert(ctx, tx.db, toAdd, dbkit.BatchSize); err != nil {
			return dbkit.WithErr1(err, "AddRolesToMany").Err()
		}
		for _, holder := range holders {
			_ = tx.logAudit(ctx, AuditActionAssigned, holder, nil, names)
		}
		return nil
	})
}

// DelRolesFromMany revokes every referenced role from every holder in one
// batched delete.
func (s *Service) DelRolesFromMany(ctx context.Context, refs []RoleRef, holders []Subject) error {
	roles, err := s.resolveRoles(ctx, refs)
	if err != nil {
		return err
	}
	if len(holders) == 0 {
		return nil
	}

	byType := subjectIDsByType(holders)
	names := RoleNames(roles)

	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		q := tx.db.NewDelete().Table("acl_holder_roles").
			Where("role_id IN (?)", bun.In(roleIDs(roles))).
			WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
				for holderType, ids := range byType {
					q = q.WhereOr("(holder_type = ? AND holder_id IN (?))", holderType, bun.In(ids))
				}
				return q
			})
		result, err := q.Exec(ctx)
		if err = dbkit.WithErr(result, err, "DelRolesFromMany").Err(); err != nil {
			return err
		}
		for _, holder := range holders {
			_ = tx.logAudit(ctx, AuditActionUnassigned, holder, nil, names)
		}
		return nil
	})
}

// ============================================================================
// BATCH DECORATION
// ============================================================================

// WithRoles fetches the role set of every given holder in two queries (one
// for membership rows, one for role rows) joined in memory.
func (s *Service) WithRoles(ctx context.Context, holders []Subject) (map[SubjectRef][]Role, error) {
	out := make(map[SubjectRef][]Role, len(holders))
	if len(holders) == 0 {
		return out, nil
	}
	byType := subjectIDsByType(holders)

	var memberships []HolderRole
	mq := s.db.NewSelect().Model(&memberships).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for holderType, ids := range byType {
				q = q.WhereOr("(hr.holder_type = ? AND hr.holder_id IN (?))", holderType, bun.In(ids))
			}
			return q
		})
	if err := dbkit.WithErr1(mq.Scan(ctx), "WithRolesMemberships").Err(); err != nil {
		return nil, err
	}

	idSet := make(map[string]bool, len(memberships))
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if !idSet[m.RoleID] {
			idSet[m.RoleID] = true
			ids = append(ids, m.RoleID)
		}
	}
	roles, err := s.rolesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	id2role := make(map[string]Role, len(roles))
	for _, r := range roles {
		id2role[r.ID] = r
	}

	for _, holder := range holders {
		out[refOf(holder)] = nil
	}
	for _, m := range memberships {
		key := SubjectRef{Type: m.HolderType, ID: m.HolderID}
		if r, ok := id2role[m.RoleID]; ok {
			out[key] = append(out[key], r)
		}
	}
	return out, nil
}

// WithRoleNames is WithRoles mapped to role names.
func (s *Service) WithRoleNames(ctx context.Context, holders []Subject) (map[SubjectRef][]string, error) {
	withRoles, err := s.WithRoles(ctx, holders)
	if err != nil {
		return nil, err
	}
	out := make(map[SubjectRef][]string, len(withRoles))
	for key, roles := range withRoles {
		out[key] = RoleNames(roles)
	}
	return out, nil
}
