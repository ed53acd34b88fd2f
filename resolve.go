package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// IDENTITY RESOLUTION
// ============================================================================

// resolvePermissions normalizes a heterogeneous set of permission references
// into canonical rows, deduplicated by id, in reference order. All pending
// refs are resolved in a single batched query.
//
// With strict set, every reference must match at least one row; this is the
// policy for mutations (you cannot grant what does not exist). Checks pass
// strict=false: an unmatched reference simply contributes nothing, so probing
// for a permission that was never created answers "no" instead of failing.
func (s *Service) resolvePermissions(ctx context.Context, refs []PermissionRef, strict bool) ([]Permission, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var (
		out     []Permission
		seen    = make(map[string]bool, len(refs))
		pending []PermissionRef
	)
	for _, ref := range refs {
		switch {
		case ref.entity != nil:
			if !seen[ref.entity.ID] {
				seen[ref.entity.ID] = true
				out = append(out, *ref.entity)
			}
		case ref.id != "" || ref.name != "":
			pending = append(pending, ref)
		default:
			return nil, NewError(ErrInvalidArgument, "permission reference has no entity, id, or name")
		}
	}
	if len(pending) == 0 {
		return out, nil
	}

	var rows []Permission
	q := s.db.NewSelect().Model(&rows).WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, ref := range pending {
			switch {
			case ref.id != "":
				q = q.WhereOr("p.id = ?", ref.id)
			case ref.scoped && ref.resourceID == "":
				q = q.WhereOr("(p.name = ? AND p.resource_type = ? AND p.resource_id IS NULL)",
					ref.name, ref.resourceType)
			case ref.scoped:
				q = q.WhereOr("(p.name = ? AND p.resource_type = ? AND p.resource_id = ?)",
					ref.name, ref.resourceType, ref.resourceID)
			default:
				q = q.WhereOr("p.name = ?", ref.name)
			}
		}
		return q
	})
	if err := dbkit.WithErr1(q.Scan(ctx), "ResolvePermissions").Err(); err != nil {
		return nil, err
	}

	for _, ref := range pending {
		matched := false
		for i := range rows {
			if !ref.matches(&rows[i]) {
				continue
			}
			matched = true
			if !seen[rows[i].ID] {
				seen[rows[i].ID] = true
				out = append(out, rows[i])
			}
		}
		if strict && !matched {
			return nil, NewError(ErrNotFound, "permission does not exist").
				WithPermission(ref.label()).
				WithResource(ref.resourceType, ref.resourceID)
		}
	}
	return out, nil
}

func (ref PermissionRef) matches(p *Permission) bool {
	switch {
	case ref.id != "":
		return p.ID == ref.id
	case ref.scoped:
		return p.Name == ref.name &&
			p.ResourceType == ref.resourceType &&
			p.ResourceID == ref.resourceID
	default:
		return p.Name == ref.name
	}
}

func (ref PermissionRef) label() string {
	if ref.name != "" {
		return ref.name
	}
	return ref.id
}

// resolveRoles normalizes a heterogeneous set of role references into
// canonical rows, deduplicated by id, in reference order. Role resolution is
// always strict: every reference must match an existing role, and an empty
// input is an error.
func (s *Service) resolveRoles(ctx context.Context, refs []RoleRef) ([]Role, error) {
	if len(refs) == 0 {
		return nil, NewError(ErrInvalidArgument, "no roles given")
	}

	var (
		out     []Role
		seen    = make(map[string]bool, len(refs))
		pending []RoleRef
	)
	for _, ref := range refs {
		switch {
		case ref.entity != nil:
			if !seen[ref.entity.ID] {
				seen[ref.entity.ID] = true
				out = append(out, *ref.entity)
			}
		case ref.id != "" || ref.name != "":
			pending = append(pending, ref)
		default:
			return nil, NewError(ErrInvalidArgument, "role reference has no entity, id, or name")
		}
	}
	if len(pending) == 0 {
		return out, nil
	}

	var rows []Role
	q := s.db.NewSelect().Model(&rows).WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, ref := range pending {
			if ref.id != "" {
				q = q.WhereOr("r.id = ?", ref.id)
			} else {
				q = q.WhereOr("r.name = ?", ref.name)
			}
		}
		return q
	})
	if err := dbkit.WithErr1(q.Scan(ctx), "ResolveRoles").Err(); err != nil {
		return nil, err
	}

	for _, ref := range pending {
		matched := false
		for i := range rows {
			if !ref.matches(&rows[i]) {
				continue
			}
			matched = true
			if !seen[rows[i].ID] {
				seen[rows[i].ID] = true
				out = append(out, rows[i])
			}
		}
		if !matched {
			return nil, NewError(ErrNotFound, "role does not exist").WithRole(ref.label())
		}
	}
	return out, nil
}

func (ref RoleRef) matches(r *Role) bool {
	if ref.id != "" {
		return r.ID == ref.id
	}
	return r.Name == ref.name
}

func (ref RoleRef) label() string {
	if ref.name != "" {
		return ref.name
	}
	return ref.id
}
