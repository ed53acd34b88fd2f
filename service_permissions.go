package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PERMISSION GRANTS
// ============================================================================

// AddPermission grants a single permission to a subject.
//
// Example:
//
//	err := service.AddPermission(ctx, editor, aclkit.PermByName("article.update"))
func (s *Service) AddPermission(ctx context.Context, sub Subject, ref PermissionRef) error {
	return s.AddPermissions(ctx, sub, ref)
}

// AddPermissions grants the referenced permissions to a subject in one batch
// insert. Every reference must resolve; granting a nonexistent permission is
// ErrNotFound. Granting a permission the subject already holds fails on the
// association table's composite key; use AddPermissionDirect for an
// idempotent variant.
func (s *Service) AddPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error {
	permissions, err := s.resolvePermissions(ctx, refs, true)
	if err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}

	toAdd := make([]*SubjectPermission, len(permissions))
	for i, p := range permissions {
		toAdd[i] = &SubjectPermission{
			SubjectType:  sub.SubjectType(),
			SubjectID:    sub.SubjectID(),
			PermissionID: p.ID,
		}
	}

	result, err := s.db.NewInsert().Model(&toAdd).Exec(ctx)
	if err = dbkit.WithErr(result, err, "AddPermissions").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionGranted, sub, PermissionNames(permissions), nil)

	return nil
}

// AddPermissionDirect grants a single permission, ignoring the duplicate-key
// conflict a concurrent or repeated grant would hit. Reports
// ErrAlreadyGranted when the subject already held it.
func (s *Service) AddPermissionDirect(ctx context.Context, sub Subject, ref PermissionRef) error {
	permissions, err := s.resolvePermissions(ctx, []PermissionRef{ref}, true)
	if err != nil {
		return err
	}

	grant := &SubjectPermission{
		SubjectType:  sub.SubjectType(),
		SubjectID:    sub.SubjectID(),
		PermissionID: permissions[0].ID,
	}

	result, err := s.db.NewInsert().
		Model(grant).
		On("CONFLICT (subject_type, subject_id, permission_id) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "AddPermissionDirect").Err(); err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewError(ErrAlreadyGranted, "subject already holds this permission").
			WithSubject(sub).
			WithPermission(permissions[0].Name)
	}

	_ = s.logAudit(ctx, AuditActionGranted, sub, []string{permissions[0].Name}, nil)

	return nil
}

// AddPermissionsWithRetry grants permissions with automatic retry on
// transient database errors.
func (s *Service) AddPermissionsWithRetry(ctx context.Context, sub Subject, refs ...PermissionRef) error {
	return s.withRetry(ctx, 3, func(ctx context.Context) error {
		return s.AddPermissions(ctx, sub, refs...)
	})
}

// DelPermission revokes a single permission from a subject.
func (s *Service) DelPermission(ctx context.Context, sub Subject, ref PermissionRef) error {
	return s.DelPermissions(ctx, sub, ref)
}

// DelPermissions revokes the referenced permissions from a subject.
// References that resolve to nothing are ignored; revoking is lenient like
// checking, since the end state is the same.
func (s *Service) DelPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error {
	permissions, err := s.resolvePermissions(ctx, refs, false)
	if err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}

	result, err := s.db.NewDelete().Table("acl_subject_permissions").
		Where("subject_type = ? AND subject_id = ?", sub.SubjectType(), sub.SubjectID()).
		Where("permission_id IN (?)", bun.In(permissionIDs(permissions))).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "DelPermissions").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionRevoked, sub, PermissionNames(permissions), nil)

	return nil
}

// DelAllPermissions revokes every direct grant of a subject. Role-derived
// permissions are untouched; revoke the role instead.
func (s *Service) DelAllPermissions(ctx context.Context, sub Subject) error {
	result, err := s.db.NewDelete().Table("acl_subject_permissions").
		Where("subject_type = ? AND subject_id = ?", sub.SubjectType(), sub.SubjectID()).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "DelAllPermissions").Err(); err != nil {
		return err
	}

	_ = s.logAudit(ctx, AuditActionRevoked, sub, []string{"*"}, nil)

	return nil
}

// SetPermissions replaces a subject's direct grant set with the referenced
// permissions. Runs as one transaction so concurrent readers never observe
// the empty window between delete and insert.
func (s *Service) SetPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error {
	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		if err := tx.DelAllPermissions(ctx, sub); err != nil {
			return err
		}
		return tx.AddPermissions(ctx, sub, refs...)
	})
}

// GetPermissions returns a subject's effective permission set: its direct
// grants plus the grants of every role it has, in two batched queries.
func (s *Service) GetPermissions(ctx context.Context, sub Subject) ([]Permission, error) {
	ids, err := s.effectivePermissionIDs(ctx, sub)
	if err != nil {
		return nil, err
	}
	return s.permissionsByID(ctx, ids)
}

// GetDirectPermissions returns only the subject's own grants, without
// role-derived permissions.
func (s *Service) GetDirectPermissions(ctx context.Context, sub Subject) ([]Permission, error) {
	var ids []string
	q := whereSubjectDirect(
		s.db.NewSelect().Model((*SubjectPermission)(nil)).Column("sp.permission_id"), sub)
	if err := dbkit.WithErr1(q.Scan(ctx, &ids), "GetDirectPermissions").Err(); err != nil {
		return nil, err
	}
	return s.permissionsByID(ctx, ids)
}

// GetPermissionNames returns the names of a subject's effective permissions.
func (s *Service) GetPermissionNames(ctx context.Context, sub Subject) ([]string, error) {
	permissions, err := s.GetPermissions(ctx, sub)
	if err != nil {
		return nil, err
	}
	return PermissionNames(permissions), nil
}

// HasPermission checks whether the referenced permission is in the subject's
// effective set.
//
// Example:
//
//	ok, err := service.HasPermission(ctx, alice, aclkit.PermFor("article.view", "models.Article", "5"))
func (s *Service) HasPermission(ctx context.Context, sub Subject, ref PermissionRef) (bool, error) {
	return s.HasPermissions(ctx, sub, ref)
}

// HasPermissions checks whether every referenced permission is in the
// subject's effective set. References that resolve to no existing permission
// count as not held, so one unknown name turns the whole check false.
func (s *Service) HasPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) (bool, error) {
	held, err := s.heldByRef(ctx, sub, refs)
	if err != nil {
		return false, err
	}
	if len(held) == 0 {
		return false, nil
	}
	for _, ok := range held {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// HasAnyPermission checks whether at least one of the referenced permissions
// is in the subject's effective set.
func (s *Service) HasAnyPermission(ctx context.Context, sub Subject, refs ...PermissionRef) (bool, error) {
	held, err := s.heldByRef(ctx, sub, refs)
	if err != nil {
		return false, err
	}
	for _, ok := range held {
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// heldByRef resolves refs leniently and reports, per reference, whether any
// row it matches is in the subject's effective set. The answer is keyed on
// the caller's references, not the resolved rows: an unmatched reference is
// not held, and an unscoped name matching several rows is held as soon as
// one of them is. One membership query for the whole batch.
func (s *Service) heldByRef(ctx context.Context, sub Subject, refs []PermissionRef) ([]bool, error) {
	permissions, err := s.resolvePermissions(ctx, refs, false)
	if err != nil {
		return nil, err
	}
	held := make([]bool, len(refs))
	if len(permissions) == 0 {
		return held, nil
	}

	var ids []string
	q := whereSubjectEffective(
		s.db.NewSelect().Model((*SubjectPermission)(nil)).
			ColumnExpr("DISTINCT sp.permission_id"), sub).
		Where("sp.permission_id IN (?)", bun.In(permissionIDs(permissions)))
	if err := dbkit.WithErr1(q.Scan(ctx, &ids), "HeldByRef").Err(); err != nil {
		return nil, err
	}

	heldSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		heldSet[id] = true
	}
	for i, ref := range refs {
		if ref.entity != nil {
			held[i] = heldSet[ref.entity.ID]
			continue
		}
		for j := range permissions {
			if ref.matches(&permissions[j]) && heldSet[permissions[j].ID] {
				held[i] = true
				break
			}
		}
	}
	return held, nil
}

// CountPermissions returns the size of the subject's effective permission
// set.
func (s *Service) CountPermissions(ctx context.Context, sub Subject) (int, error) {
	q := whereSubjectEffective(
		s.db.NewSelect().Model((*SubjectPermission)(nil)).
			ColumnExpr("count(DISTINCT sp.permission_id)"), sub)

	var count int
	if err := dbkit.WithErr1(q.Scan(ctx, &count), "CountPermissions").Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// CountAllGrants returns the total number of grant rows in the system.
// Useful for monitoring and analytics.
func (s *Service) CountAllGrants(ctx context.Context) (int, error) {
	return dbkit.Count[SubjectPermission](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// effectivePermissionIDs returns the distinct permission ids of the
// subject's effective set in a single query.
func (s *Service) effectivePermissionIDs(ctx context.Context, sub Subject) ([]string, error) {
	var ids []string
	q := whereSubjectEffective(
		s.db.NewSelect().Model((*SubjectPermission)(nil)).
			ColumnExpr("DISTINCT sp.permission_id"), sub)
	if err := dbkit.WithErr1(q.Scan(ctx, &ids), "EffectivePermissionIDs").Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ============================================================================
// BULK CROSS-SUBJECT OPERATIONS
// ============================================================================

// AddPermissionsToMany grants every referenced permission to every subject:
// one resolution, one batch insert spanning the full cross product.
//
// Sized for moderate fan-out (tens to low hundreds per side); chunk larger
// batches at the call site.
func (s *Service) AddPermissionsToMany(ctx context.Context, refs []PermissionRef, subjects []Subject) error {
	permissions, err := s.resolvePermissions(ctx, refs, true)
	if err != nil {
		return err
	}
	if len(permissions) == 0 || len(subjects) == 0 {
		return nil
	}

	toAdd := make([]*SubjectPermission, 0, len(permissions)*len(subjects))
	for _, sub := range subjects {
		for _, p := range permissions {
			toAdd = append(toAdd, &SubjectPermission{
				SubjectType:  sub.SubjectType(),
				SubjectID:    sub.SubjectID(),
				PermissionID: p.ID,
			})
		}
	}

	names := PermissionNames(permissions)
	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		if _, err := dbkit.BatchInsert(ctx, tx.db, toAdd, dbkit.BatchSize); err != nil {
			return dbkit.WithErr1(err, "AddPermissionsToMany").Err()
		}
		for _, sub := range subjects {
			_ = tx.logAudit(ctx, AuditActionGranted, sub, names, nil)
		}
		return nil
	})
}

// DelPermissionsFromMany revokes every referenced permission from every
// subject in one batched delete.
func (s *Service) DelPermissionsFromMany(ctx context.Context, refs []PermissionRef, subjects []Subject) error {
	permissions, err := s.resolvePermissions(ctx, refs, false)
	if err != nil {
		return err
	}
	if len(permissions) == 0 || len(subjects) == 0 {
		return nil
	}

	byType := subjectIDsByType(subjects)
	names := PermissionNames(permissions)

	return s.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		q := tx.db.NewDelete().Table("acl_subject_permissions").
			Where("permission_id IN (?)", bun.In(permissionIDs(permissions))).
			WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
				for subjectType, ids := range byType {
					q = q.WhereOr("(subject_type = ? AND subject_id IN (?))", subjectType, bun.In(ids))
				}
				return q
			})
		result, err := q.Exec(ctx)
		if err = dbkit.WithErr(result, err, "DelPermissionsFromMany").Err(); err != nil {
			return err
		}
		for _, sub := range subjects {
			_ = tx.logAudit(ctx, AuditActionRevoked, sub, names, nil)
		}
		return nil
	})
}

// subjectIDsByType groups subject ids by their polymorphic type tag.
func subjectIDsByType(subjects []Subject) map[string][]string {
	byType := make(map[string][]string)
	for _, sub := range subjects {
		byType[sub.SubjectType()] = append(byType[sub.SubjectType()], sub.SubjectID())
	}
	return byType
}

// ============================================================================
// BATCH DECORATION
// ============================================================================

// WithPermissions computes the effective permission set of every given
// subject in a bounded number of queries (three, independent of subject
// count): one for role memberships, one for grant rows, one for permission
// rows, joined in memory.
func (s *Service) WithPermissions(ctx context.Context, subjects []Subject) (map[SubjectRef][]Permission, error) {
	out := make(map[SubjectRef][]Permission, len(subjects))
	if len(subjects) == 0 {
		return out, nil
	}
	byType := subjectIDsByType(subjects)

	// role memberships of all subjects
	var memberships []HolderRole
	mq := s.db.NewSelect().Model(&memberships).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for holderType, ids := range byType {
				q = q.WhereOr("(hr.holder_type = ? AND hr.holder_id IN (?))", holderType, bun.In(ids))
			}
			return q
		})
	if err := dbkit.WithErr1(mq.Scan(ctx), "WithPermissionsMemberships").Err(); err != nil {
		return nil, err
	}

	rolesOf := make(map[SubjectRef][]string)
	allRoleIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		key := SubjectRef{Type: m.HolderType, ID: m.HolderID}
		rolesOf[key] = append(rolesOf[key], m.RoleID)
		allRoleIDs = append(allRoleIDs, m.RoleID)
	}

	// grant rows of all subjects plus all their roles
	var grants []SubjectPermission
	gq := s.db.NewSelect().Model(&grants).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for subjectType, ids := range byType {
				q = q.WhereOr("(sp.subject_type = ? AND sp.subject_id IN (?))", subjectType, bun.In(ids))
			}
			if len(allRoleIDs) > 0 {
				q = q.WhereOr("(sp.subject_type = ? AND sp.subject_id IN (?))", SubjectTypeRole, bun.In(allRoleIDs))
			}
			return q
		})
	if err := dbkit.WithErr1(gq.Scan(ctx), "WithPermissionsGrants").Err(); err != nil {
		return nil, err
	}

	// permission rows, then an in-memory id -> entity map-join
	permissionSet := make(map[string]bool, len(grants))
	permIDs := make([]string, 0, len(grants))
	for _, g := range grants {
		if !permissionSet[g.PermissionID] {
			permissionSet[g.PermissionID] = true
			permIDs = append(permIDs, g.PermissionID)
		}
	}
	permissions, err := s.permissionsByID(ctx, permIDs)
	if err != nil {
		return nil, err
	}
	id2perm := make(map[string]Permission, len(permissions))
	for _, p := range permissions {
		id2perm[p.ID] = p
	}

	grantsOf := make(map[SubjectRef][]string)
	for _, g := range grants {
		key := SubjectRef{Type: g.SubjectType, ID: g.SubjectID}
		grantsOf[key] = append(grantsOf[key], g.PermissionID)
	}

	for _, sub := range subjects {
		key := refOf(sub)
		seen := make(map[string]bool)
		var set []Permission
		add := func(ids []string) {
			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true
				if p, ok := id2perm[id]; ok {
					set = append(set, p)
				}
			}
		}
		add(grantsOf[key])
		for _, roleID := range rolesOf[key] {
			add(grantsOf[SubjectRef{Type: SubjectTypeRole, ID: roleID}])
		}
		out[key] = set
	}
	return out, nil
}

// WithPermissionNames is WithPermissions mapped to permission names.
func (s *Service) WithPermissionNames(ctx context.Context, subjects []Subject) (map[SubjectRef][]string, error) {
	grants, err := s.WithPermissions(ctx, subjects)
	if err != nil {
		return nil, err
	}
	out := make(map[SubjectRef][]string, len(grants))
	for key, permissions := range grants {
		out[key] = PermissionNames(permissions)
	}
	return out, nil
}

// ============================================================================
// REVERSE LOOKUP
// ============================================================================

// SubjectsWithPermission returns the references of every subject directly
// holding the given permission.
func (s *Service) SubjectsWithPermission(ctx context.Context, ref PermissionRef) ([]SubjectRef, error) {
	permissions, err := s.resolvePermissions(ctx, []PermissionRef{ref}, false)
	if err != nil {
		return nil, err
	}
	if len(permissions) == 0 {
		return nil, nil
	}

	var grants []SubjectPermission
	err = dbkit.WithErr1(
		s.db.NewSelect().Model(&grants).
			Where("sp.permission_id IN (?)", bun.In(permissionIDs(permissions))).
			Scan(ctx),
		"SubjectsWithPermission").Err()
	if err != nil {
		return nil, err
	}

	seen := make(map[SubjectRef]bool, len(grants))
	out := make([]SubjectRef, 0, len(grants))
	for _, g := range grants {
		key := SubjectRef{Type: g.SubjectType, ID: g.SubjectID}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}

// RoleNamesWithPermission returns the names of the roles holding the given
// permission.
func (s *Service) RoleNamesWithPermission(ctx context.Context, ref PermissionRef) ([]string, error) {
	subjects, err := s.SubjectsWithPermission(ctx, ref)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		if sub.Type == SubjectTypeRole {
			ids = append(ids, sub.ID)
		}
	}
	roles, err := s.rolesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return RoleNames(roles), nil
}

// AccessibleResourceIDs returns the instance ids of resourceType for which
// the subject's effective set holds an instance-scoped permission with one
// of the given action names (prefixed). Pass no actions to match any
// permission of the type.
//
// Example:
//
//	ids, err := service.AccessibleResourceIDs(ctx, alice, "models.Article", "view")
func (s *Service) AccessibleResourceIDs(ctx context.Context, sub Subject, resourceType string, actions ...string) ([]string, error) {
	ids, err := s.effectivePermissionIDs(ctx, sub)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	prefix := PermissionPrefix(resourceType)
	var resourceIDs []string
	q := s.db.NewSelect().Model((*Permission)(nil)).
		ColumnExpr("DISTINCT p.resource_id").
		Where("p.id IN (?)", bun.In(ids)).
		Where("p.resource_type = ?", resourceType).
		Where("p.resource_id IS NOT NULL")
	if len(actions) > 0 {
		names := make([]string, len(actions))
		for i, action := range actions {
			names[i] = prefix + "." + action
		}
		q = q.Where("p.name IN (?)", bun.In(names))
	}
	if err := dbkit.WithErr1(q.Scan(ctx, &resourceIDs), "AccessibleResourceIDs").Err(); err != nil {
		return nil, err
	}
	return resourceIDs, nil
}
