package aclkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPermissionScoping tests the scope predicates on Permission
func TestPermissionScoping(t *testing.T) {
	t.Run("Global permission", func(t *testing.T) {
		p := Permission{Name: "reports.export"}
		assert.False(t, p.IsTypeScoped())
		assert.False(t, p.IsInstanceScoped())
	})

	t.Run("Type-scoped permission", func(t *testing.T) {
		p := Permission{Name: "article.viewAny", ResourceType: "models.Article"}
		assert.True(t, p.IsTypeScoped())
		assert.False(t, p.IsInstanceScoped())
	})

	t.Run("Instance-scoped permission", func(t *testing.T) {
		p := Permission{Name: "article.view", ResourceType: "models.Article", ResourceID: "42"}
		assert.False(t, p.IsTypeScoped())
		assert.True(t, p.IsInstanceScoped())
	})
}

// TestRoleAsSubject tests that roles hold permissions under the role subject type
func TestRoleAsSubject(t *testing.T) {
	role := &Role{ID: "r1", Name: "editor"}
	assert.Equal(t, SubjectTypeRole, role.SubjectType())
	assert.Equal(t, "r1", role.SubjectID())
}

// TestSubjectRef tests the plain subject reference
func TestSubjectRef(t *testing.T) {
	ref := NewSubject("user", "u1")
	assert.Equal(t, "user", ref.SubjectType())
	assert.Equal(t, "u1", ref.SubjectID())
	assert.Equal(t, "user:u1", ref.String())

	t.Run("refOf normalizes any subject", func(t *testing.T) {
		role := &Role{ID: "r1", Name: "editor"}
		assert.Equal(t, SubjectRef{Type: SubjectTypeRole, ID: "r1"}, refOf(role))
		assert.Equal(t, ref, refOf(ref))
	})
}

// TestResourceRef tests the plain resource reference
func TestResourceRef(t *testing.T) {
	r := NewResource("models.Article", "42")
	assert.Equal(t, "models.Article", r.ResourceType())
	assert.Equal(t, "42", r.ResourceID())

	typeLevel := NewResource("models.Article", "")
	assert.Equal(t, "", typeLevel.ResourceID())
}

// TestPermissionPrefix tests prefix derivation from resource type tags
func TestPermissionPrefix(t *testing.T) {
	tests := []struct {
		resourceType string
		expected     string
	}{
		{"models.Article", "article"},
		{"app/models/Article", "article"},
		{"Article", "article"},
		{"myapp.storage.Account", "account"},
		{"app/models/UserProfile", "userprofile"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			assert.Equal(t, tt.expected, PermissionPrefix(tt.resourceType))
		})
	}
}

type prefixedResource struct{ ResourceRef }

func (prefixedResource) PermissionPrefix() string { return "doc" }

// TestPrefixFor tests the PermissionPrefixer override
func TestPrefixFor(t *testing.T) {
	plain := NewResource("models.Article", "1")
	assert.Equal(t, "article", prefixFor(plain))

	custom := prefixedResource{NewResource("models.Document", "1")}
	assert.Equal(t, "doc", prefixFor(custom))
	assert.Equal(t, "doc.view", ResourcePermissionName(custom, ActionView))
}

// TestNameHelpers tests the name and id extraction helpers
func TestNameHelpers(t *testing.T) {
	permissions := []Permission{
		{ID: "p1", Name: "a.view"},
		{ID: "p2", Name: "a.update"},
	}
	assert.Equal(t, []string{"a.view", "a.update"}, PermissionNames(permissions))
	assert.Equal(t, []string{"p1", "p2"}, permissionIDs(permissions))

	roles := []Role{
		{ID: "r1", Name: "admin"},
		{ID: "r2", Name: "editor"},
	}
	assert.Equal(t, []string{"admin", "editor"}, RoleNames(roles))
	assert.Equal(t, []string{"r1", "r2"}, roleIDs(roles))
}

// TestCrudActionTuples tests the scope-driven action tuple selection
func TestCrudActionTuples(t *testing.T) {
	instance := NewResource("models.Article", "42")
	assert.Equal(t, InstanceCrudActions, crudActionsFor(instance))

	typeLevel := NewResource("models.Article", "")
	assert.Equal(t, TypeCrudActions, crudActionsFor(typeLevel))
}

// TestTypeScope tests the type-level view over an instance resource
func TestTypeScope(t *testing.T) {
	instance := NewResource("models.Article", "42")
	scoped := typeScope{instance}
	assert.Equal(t, "models.Article", scoped.ResourceType())
	assert.Equal(t, "", scoped.ResourceID())
	assert.Equal(t, "article", prefixFor(scoped))

	custom := prefixedResource{NewResource("models.Document", "9")}
	assert.Equal(t, "doc", prefixFor(typeScope{custom}))
}
