package aclkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotChecker() *Checker {
	permissions := []Permission{
		{ID: "p1", Name: "article.view", ResourceType: "models.Article", ResourceID: "42"},
		{ID: "p2", Name: "article.updateAny", ResourceType: "models.Article"},
		{ID: "p3", Name: "reports.export"},
		{ID: "p4", Name: "article.view", ResourceType: "models.Article", ResourceID: "43"},
	}
	return NewChecker(NewSubject("user", "u1"), permissions, []string{"editor", "reviewer"})
}

// TestChecker_Subject tests the subject accessor
func TestChecker_Subject(t *testing.T) {
	checker := snapshotChecker()
	assert.Equal(t, NewSubject("user", "u1"), checker.Subject())
}

// TestChecker_HasPermissionName tests bare-name lookups
func TestChecker_HasPermissionName(t *testing.T) {
	checker := snapshotChecker()

	assert.True(t, checker.HasPermissionName("article.view"))
	assert.True(t, checker.HasPermissionName("reports.export"))
	assert.False(t, checker.HasPermissionName("article.delete"))
}

// TestChecker_HasResourcePermission tests exact-scope lookups
func TestChecker_HasResourcePermission(t *testing.T) {
	checker := snapshotChecker()

	assert.True(t, checker.HasResourcePermission("article.view", "models.Article", "42"))
	assert.False(t, checker.HasResourcePermission("article.view", "models.Article", "99"))
	assert.True(t, checker.HasResourcePermission("article.updateAny", "models.Article", ""))
	assert.True(t, checker.HasResourcePermission("reports.export", "", ""))
}

// TestChecker_Can tests action decisions against the snapshot
func TestChecker_Can(t *testing.T) {
	checker := snapshotChecker()

	t.Run("Instance permission authorizes", func(t *testing.T) {
		assert.True(t, checker.Can(ActionView, NewResource("models.Article", "42")))
	})

	t.Run("Type-wide Any variant authorizes any instance", func(t *testing.T) {
		assert.True(t, checker.Can(ActionUpdate, NewResource("models.Article", "42")))
		assert.True(t, checker.Can(ActionUpdate, NewResource("models.Article", "99")))
	})

	t.Run("Missing both candidates denies", func(t *testing.T) {
		assert.False(t, checker.Can(ActionDelete, NewResource("models.Article", "42")))
		assert.False(t, checker.Can(ActionView, NewResource("models.Article", "99")))
	})

	t.Run("Type-level action checks type scope only", func(t *testing.T) {
		assert.True(t, checker.Can(ActionUpdateAny, NewResource("models.Article", "123")))
		assert.False(t, checker.Can(ActionCreate, NewResource("models.Article", "")))
	})
}

// TestChecker_Roles tests the role lookups
func TestChecker_Roles(t *testing.T) {
	checker := snapshotChecker()

	assert.True(t, checker.HasRole("editor"))
	assert.False(t, checker.HasRole("admin"))
	assert.True(t, checker.HasAnyRole("admin", "editor"))
	assert.False(t, checker.HasAnyRole("admin", "owner"))
	assert.True(t, checker.HasAllRoles("editor", "reviewer"))
	assert.False(t, checker.HasAllRoles("editor", "admin"))
	assert.Equal(t, []string{"editor", "reviewer"}, checker.RoleNames())
}

// TestChecker_PermissionNames tests the name projection
func TestChecker_PermissionNames(t *testing.T) {
	checker := snapshotChecker()

	names := checker.PermissionNames()
	assert.Contains(t, names, "article.view")
	assert.Contains(t, names, "reports.export")
	assert.Len(t, checker.Permissions(), 4)
}

// TestChecker_AccessibleResourceIDs tests id enumeration from the snapshot
func TestChecker_AccessibleResourceIDs(t *testing.T) {
	checker := snapshotChecker()

	ids := checker.AccessibleResourceIDs("models.Article", ActionView)
	assert.ElementsMatch(t, []string{"42", "43"}, ids)

	assert.Empty(t, checker.AccessibleResourceIDs("models.Article", ActionDelete))
	assert.Empty(t, checker.AccessibleResourceIDs("models.Account", ActionView))
}

// TestChecker_IsEmpty tests the empty snapshot predicate
func TestChecker_IsEmpty(t *testing.T) {
	assert.False(t, snapshotChecker().IsEmpty())

	empty := NewChecker(NewSubject("user", "nobody"), nil, nil)
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.Can(ActionView, NewResource("models.Article", "42")))
}
