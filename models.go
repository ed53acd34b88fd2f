package aclkit

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Permission is a named capability, optionally scoped to a resource type and
// to one resource instance.
//
// ResourceType is the type tag of the resource class the permission applies
// to (e.g. "models.Article"); empty means a global permission. ResourceID
// identifies one instance of that type ("instance-scoped"); empty means the
// permission covers the whole type ("type-scoped", e.g. "article.viewAny").
//
// The triple (Name, ResourceType, ResourceID) is unique.
type Permission struct {
	bun.BaseModel `bun:"table:acl_permissions,alias:p"`

	ID           string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	ResourceType string    `bun:"resource_type,nullzero"`
	ResourceID   string    `bun:"resource_id,nullzero"`
	Description  string    `bun:"description,nullzero"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsTypeScoped reports whether the permission applies to every instance of
// its resource type.
func (p *Permission) IsTypeScoped() bool {
	return p.ResourceType != "" && p.ResourceID == ""
}

// IsInstanceScoped reports whether the permission is bound to one resource.
func (p *Permission) IsInstanceScoped() bool {
	return p.ResourceID != ""
}

// Role is a reusable bundle of permissions. Roles hold their permissions
// through the same polymorphic grant table as any other subject.
type Role struct {
	bun.BaseModel `bun:"table:acl_roles,alias:r"`

	ID          string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,nullzero"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SubjectTypeRole is the polymorphic type tag under which roles hold their
// own permissions.
const SubjectTypeRole = "role"

// SubjectType implements Subject.
func (r *Role) SubjectType() string { return SubjectTypeRole }

// SubjectID implements Subject.
func (r *Role) SubjectID() string { return r.ID }

// SubjectPermission is one row of the polymorphic grant table: the subject
// identified by (SubjectType, SubjectID) holds PermissionID. The composite
// primary key keeps a subject from holding the same permission twice.
type SubjectPermission struct {
	bun.BaseModel `bun:"table:acl_subject_permissions,alias:sp"`

	SubjectType  string    `bun:"subject_type,pk"`
	SubjectID    string    `bun:"subject_id,pk"`
	PermissionID string    `bun:"permission_id,pk,type:uuid"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// HolderRole is one row of the polymorphic role-membership table: the holder
// identified by (HolderType, HolderID) has RoleID.
type HolderRole struct {
	bun.BaseModel `bun:"table:acl_holder_roles,alias:hr"`

	HolderType string    `bun:"holder_type,pk"`
	HolderID   string    `bun:"holder_id,pk"`
	RoleID     string    `bun:"role_id,pk,type:uuid"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Subject is anything that can hold permissions or be assigned roles: a user,
// a role, a service account, an API token. Implementations must return a
// stable type tag and identifier, which together form the polymorphic key in
// the association tables.
type Subject interface {
	SubjectType() string
	SubjectID() string
}

// SubjectRef is a plain (type, id) pair implementing Subject. Use it when the
// caller has identifiers but no entity value at hand.
type SubjectRef struct {
	Type string
	ID   string
}

// NewSubject creates a SubjectRef.
func NewSubject(subjectType, subjectID string) SubjectRef {
	return SubjectRef{Type: subjectType, ID: subjectID}
}

// SubjectType implements Subject.
func (s SubjectRef) SubjectType() string { return s.Type }

// SubjectID implements Subject.
func (s SubjectRef) SubjectID() string { return s.ID }

// String returns a string representation of the subject reference.
func (s SubjectRef) String() string { return s.Type + ":" + s.ID }

// refOf normalizes any Subject into a SubjectRef, usable as a map key.
func refOf(s Subject) SubjectRef {
	return SubjectRef{Type: s.SubjectType(), ID: s.SubjectID()}
}

// Resource is a domain entity type for which per-type or per-instance CRUD
// permissions can be generated. ResourceID may be empty, in which case the
// value stands for the type as a whole and only type-scoped operations apply.
type Resource interface {
	ResourceType() string
	ResourceID() string
}

// ResourceRef is a plain (type, id) pair implementing Resource.
type ResourceRef struct {
	Type string
	ID   string
}

// NewResource creates a ResourceRef. Pass an empty id for the type as a whole.
func NewResource(resourceType, resourceID string) ResourceRef {
	return ResourceRef{Type: resourceType, ID: resourceID}
}

// ResourceType implements Resource.
func (r ResourceRef) ResourceType() string { return r.Type }

// ResourceID implements Resource.
func (r ResourceRef) ResourceID() string { return r.ID }

// PermissionPrefixer lets a resource override the permission-name prefix
// derived from its type tag.
type PermissionPrefixer interface {
	PermissionPrefix() string
}

// PermissionPrefix returns the canonical permission-name prefix for a
// resource type tag: the lowercase of its last path segment. Both "." and
// "/" act as path separators, so "models.Article", "app/models/Article" and
// "Article" all map to "article".
func PermissionPrefix(resourceType string) string {
	s := resourceType
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToLower(s)
}

// prefixFor resolves the permission prefix of a resource, honoring a
// PermissionPrefixer override.
func prefixFor(r Resource) string {
	if p, ok := r.(PermissionPrefixer); ok {
		return p.PermissionPrefix()
	}
	return PermissionPrefix(r.ResourceType())
}

// PermissionNames maps permissions to their names, preserving order.
func PermissionNames(permissions []Permission) []string {
	names := make([]string, len(permissions))
	for i, p := range permissions {
		names[i] = p.Name
	}
	return names
}

// RoleNames maps roles to their names, preserving order.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

func permissionIDs(permissions []Permission) []string {
	ids := make([]string, len(permissions))
	for i, p := range permissions {
		ids[i] = p.ID
	}
	return ids
}

func roleIDs(roles []Role) []string {
	ids := make([]string, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionGranted    AuditAction = "granted"
	AuditActionRevoked    AuditAction = "revoked"
	AuditActionAssigned   AuditAction = "assigned"
	AuditActionUnassigned AuditAction = "unassigned"
)

// AuditLog records permission grants/revocations and role assignments for
// compliance and debugging.
type AuditLog struct {
	bun.BaseModel `bun:"table:acl_audit_log,alias:al"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the mutation
	ActorID string `bun:"actor_id,nullzero"`

	// What happened
	Action AuditAction `bun:"action,notnull"`

	// Target of the mutation
	SubjectType string `bun:"subject_type,notnull"`
	SubjectID   string `bun:"subject_id,notnull"`

	// Permission or role names involved
	Permissions []string `bun:"permissions,array,type:text[]"`
	Roles       []string `bun:"roles,array,type:text[]"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address,nullzero"`
	UserAgent string `bun:"user_agent,nullzero"`
	RequestID string `bun:"request_id,nullzero"`
}
