package aclkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for aclkit.
// Use db.Migrate(ctx, service.Migrations()) to run migrations.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "aclkit-001",
			Description: "Create acl_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_permissions (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    resource_type TEXT,
                    resource_id TEXT,
                    description TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS acl_permissions_identity
                    ON acl_permissions (name, COALESCE(resource_type, ''), COALESCE(resource_id, ''));
                CREATE INDEX IF NOT EXISTS acl_permissions_resource
                    ON acl_permissions (resource_type, resource_id)`,
		},
		{
			ID:          "aclkit-002",
			Description: "Create acl_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL UNIQUE,
                    description TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "aclkit-003",
			Description: "Create acl_subject_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_subject_permissions (
                    subject_type TEXT NOT NULL,
                    subject_id TEXT NOT NULL,
                    permission_id UUID NOT NULL REFERENCES acl_permissions (id) ON DELETE CASCADE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    PRIMARY KEY (subject_type, subject_id, permission_id)
                );
                CREATE INDEX IF NOT EXISTS acl_subject_permissions_permission
                    ON acl_subject_permissions (permission_id)`,
		},
		{
			ID:          "aclkit-004",
			Description: "Create acl_holder_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_holder_roles (
                    holder_type TEXT NOT NULL,
                    holder_id TEXT NOT NULL,
                    role_id UUID NOT NULL REFERENCES acl_roles (id) ON DELETE CASCADE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    PRIMARY KEY (holder_type, holder_id, role_id)
                );
                CREATE INDEX IF NOT EXISTS acl_holder_roles_role
                    ON acl_holder_roles (role_id)`,
		},
		{
			ID:          "aclkit-005",
			Description: "Create acl_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT,
                    action TEXT NOT NULL,
                    subject_type TEXT NOT NULL,
                    subject_id TEXT NOT NULL,
                    permissions TEXT[],
                    roles TEXT[],
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                );
                CREATE INDEX IF NOT EXISTS acl_audit_log_subject
                    ON acl_audit_log (subject_type, subject_id, timestamp DESC)`,
		},
	}
}
