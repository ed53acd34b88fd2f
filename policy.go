package aclkit

import (
	"context"
	"strings"
)

// ============================================================================
// AUTHORIZATION DECISIONS
// ============================================================================

// Can decides whether a subject may perform an action on a resource. For an
// instance-scoped action on a resource with an id, either the per-instance
// permission or the type-wide "<action>Any" permission authorizes it; both
// candidates are checked in one query. Type-scoped actions, and actions on
// id-less resources, check the type-level permission only.
//
// Permissions that were never created simply do not authorize; Can never
// fails because a name is unknown.
//
// Example:
//
//	ok, err := service.Can(ctx, user, aclkit.ActionUpdate, article)
//	// true when user holds "article.update" on this article or
//	// "article.updateAny" on the article type
func (s *Service) Can(ctx context.Context, sub Subject, action string, r Resource) (bool, error) {
	candidates := decisionCandidates(r, action)
	return s.HasAnyPermission(ctx, sub, candidates...)
}

// Authorize is Can with an error verdict: it returns nil when the subject is
// allowed and ErrUnauthorized otherwise, ready to surface from a handler.
func (s *Service) Authorize(ctx context.Context, sub Subject, action string, r Resource) error {
	allowed, err := s.Can(ctx, sub, action, r)
	if err != nil {
		return err
	}
	if !allowed {
		ref := refOf(sub)
		return NewError(ErrUnauthorized, "action not permitted").
			WithSubject(ref).
			WithPermission(ResourcePermissionName(r, action)).
			WithResource(r.ResourceType(), r.ResourceID())
	}
	return nil
}

// decisionCandidates expands an action into the permission refs that can
// authorize it.
func decisionCandidates(r Resource, action string) []PermissionRef {
	if r.ResourceID() == "" || isTypeAction(action) {
		t := typeScope{r}
		return []PermissionRef{PermFor(ResourcePermissionName(t, action), t.ResourceType(), "")}
	}
	return []PermissionRef{
		PermFor(ResourcePermissionName(r, action), r.ResourceType(), r.ResourceID()),
		PermFor(ResourcePermissionName(r, action+"Any"), r.ResourceType(), ""),
	}
}

// isTypeAction reports whether an action only ever exists at type scope.
func isTypeAction(action string) bool {
	return action == ActionCreate || strings.HasSuffix(action, "Any")
}

// ============================================================================
// POLICY VERBS
// ============================================================================

// CanViewAny reports whether the subject may list resources of this type.
func (s *Service) CanViewAny(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionViewAny, r)
}

// CanView reports whether the subject may view this resource.
func (s *Service) CanView(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionView, r)
}

// CanCreate reports whether the subject may create resources of this type.
func (s *Service) CanCreate(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionCreate, r)
}

// CanUpdate reports whether the subject may update this resource.
func (s *Service) CanUpdate(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionUpdate, r)
}

// CanDelete reports whether the subject may delete this resource.
func (s *Service) CanDelete(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionDelete, r)
}

// CanRestore reports whether the subject may restore this resource.
func (s *Service) CanRestore(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionRestore, r)
}

// CanForceDelete reports whether the subject may permanently delete this
// resource.
func (s *Service) CanForceDelete(ctx context.Context, sub Subject, r Resource) (bool, error) {
	return s.Can(ctx, sub, ActionForceDelete, r)
}
