package aclkit

import "context"

// Per-action convenience wrappers over the canonical resource-permission
// methods. The instance actions (view, update, delete) expect a resource
// carrying an id; the type actions (create, viewAny, updateAny, deleteAny)
// work on the type-level scope regardless of the resource's id.

// typeScope strips the instance id so type actions always land on the
// type-level row.
type typeScope struct{ r Resource }

func (t typeScope) ResourceType() string { return t.r.ResourceType() }
func (t typeScope) ResourceID() string   { return "" }

func (t typeScope) PermissionPrefix() string {
	if p, ok := t.r.(PermissionPrefixer); ok {
		return p.PermissionPrefix()
	}
	return PermissionPrefix(t.r.ResourceType())
}

// ============================================================================
// VIEW
// ============================================================================

func (s *Service) CreateViewPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, r, ActionView)
}

func (s *Service) GetViewPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, r, ActionView)
}

func (s *Service) DeleteViewPermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, r, ActionView)
}

func (s *Service) GrantViewPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, r, ActionView, sub)
}

func (s *Service) RevokeViewPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, r, ActionView, sub)
}

// ============================================================================
// UPDATE
// ============================================================================

func (s *Service) CreateUpdatePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, r, ActionUpdate)
}

func (s *Service) GetUpdatePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, r, ActionUpdate)
}

func (s *Service) DeleteUpdatePermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, r, ActionUpdate)
}

func (s *Service) GrantUpdatePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, r, ActionUpdate, sub)
}

func (s *Service) RevokeUpdatePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, r, ActionUpdate, sub)
}

// ============================================================================
// DELETE
// ============================================================================

func (s *Service) CreateDeletePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, r, ActionDelete)
}

func (s *Service) GetDeletePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, r, ActionDelete)
}

func (s *Service) DeleteDeletePermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, r, ActionDelete)
}

func (s *Service) GrantDeletePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, r, ActionDelete, sub)
}

func (s *Service) RevokeDeletePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, r, ActionDelete, sub)
}

// ============================================================================
// CREATE (type scope)
// ============================================================================

func (s *Service) CreateCreatePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, typeScope{r}, ActionCreate)
}

func (s *Service) GetCreatePermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, typeScope{r}, ActionCreate)
}

func (s *Service) DeleteCreatePermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, typeScope{r}, ActionCreate)
}

func (s *Service) GrantCreatePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, typeScope{r}, ActionCreate, sub)
}

func (s *Service) RevokeCreatePermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, typeScope{r}, ActionCreate, sub)
}

// ============================================================================
// VIEW ANY (type scope)
// ============================================================================

func (s *Service) CreateViewAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, typeScope{r}, ActionViewAny)
}

func (s *Service) GetViewAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, typeScope{r}, ActionViewAny)
}

func (s *Service) DeleteViewAnyPermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, typeScope{r}, ActionViewAny)
}

func (s *Service) GrantViewAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, typeScope{r}, ActionViewAny, sub)
}

func (s *Service) RevokeViewAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, typeScope{r}, ActionViewAny, sub)
}

// ============================================================================
// UPDATE ANY (type scope)
// ============================================================================

func (s *Service) CreateUpdateAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, typeScope{r}, ActionUpdateAny)
}

func (s *Service) GetUpdateAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, typeScope{r}, ActionUpdateAny)
}

func (s *Service) DeleteUpdateAnyPermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, typeScope{r}, ActionUpdateAny)
}

func (s *Service) GrantUpdateAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, typeScope{r}, ActionUpdateAny, sub)
}

func (s *Service) RevokeUpdateAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, typeScope{r}, ActionUpdateAny, sub)
}

// ============================================================================
// DELETE ANY (type scope)
// ============================================================================

func (s *Service) CreateDeleteAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.CreateResourcePermission(ctx, typeScope{r}, ActionDeleteAny)
}

func (s *Service) GetDeleteAnyPermission(ctx context.Context, r Resource) (*Permission, error) {
	return s.GetResourcePermission(ctx, typeScope{r}, ActionDeleteAny)
}

func (s *Service) DeleteDeleteAnyPermission(ctx context.Context, r Resource) error {
	return s.DeleteResourcePermission(ctx, typeScope{r}, ActionDeleteAny)
}

func (s *Service) GrantDeleteAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.GrantResourcePermission(ctx, typeScope{r}, ActionDeleteAny, sub)
}

func (s *Service) RevokeDeleteAnyPermission(ctx context.Context, r Resource, sub Subject) error {
	return s.RevokeResourcePermission(ctx, typeScope{r}, ActionDeleteAny, sub)
}
