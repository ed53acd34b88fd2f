package aclkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAddAndDelPermissions tests granting and revoking direct permissions
func TestAddAndDelPermissions(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("grant")
	name := helper.NewTestName("article.update")

	_, err := service.CreatePermission(ctx, name)
	assert.NoError(t, err)

	helper.AssertLacksPermission(sub, PermByName(name))

	err = service.AddPermission(ctx, sub, PermByName(name))
	assert.NoError(t, err)
	helper.AssertHasPermission(sub, PermByName(name))
	helper.AssertPermissionCount(sub, 1)

	err = service.DelPermission(ctx, sub, PermByName(name))
	assert.NoError(t, err)
	helper.AssertLacksPermission(sub, PermByName(name))
	helper.AssertPermissionCount(sub, 0)
}

// TestAddPermissions_UnknownNameIsNotFound tests strict resolution on grant
func TestAddPermissions_UnknownNameIsNotFound(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("strict")
	err := service.AddPermission(ctx, sub, PermByName(helper.NewTestName("ghost.permission")))
	assert.Error(t, err)
	assert.True(t, IsNotFound(err))
}

// TestDelPermissions_UnknownNameIsLenient tests lenient resolution on revoke
func TestDelPermissions_UnknownNameIsLenient(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("lenient")
	err := service.DelPermission(ctx, sub, PermByName(helper.NewTestName("ghost.permission")))
	assert.NoError(t, err)
}

// TestAddPermissionDirect tests the idempotent grant and its conflict verdict
func TestAddPermissionDirect(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("direct")
	name := helper.NewTestName("article.view")
	_, err := service.CreatePermission(ctx, name)
	assert.NoError(t, err)

	err = service.AddPermissionDirect(ctx, sub, PermByName(name))
	assert.NoError(t, err)

	err = service.AddPermissionDirect(ctx, sub, PermByName(name))
	assert.Error(t, err)
	assert.True(t, IsAlreadyGranted(err))

	helper.AssertPermissionCount(sub, 1)
}

// TestSetPermissions tests replacing a subject's direct grant set
func TestSetPermissions(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("set")
	first := helper.NewTestName("reports.view")
	second := helper.NewTestName("reports.export")
	third := helper.NewTestName("reports.delete")

	_, err := service.CreatePermissions(ctx, []string{first, second, third})
	assert.NoError(t, err)

	err = service.AddPermissions(ctx, sub, PermsByName(first, second)...)
	assert.NoError(t, err)
	helper.AssertPermissionCount(sub, 2)

	err = service.SetPermissions(ctx, sub, PermByName(third))
	assert.NoError(t, err)
	helper.AssertPermissionCount(sub, 1)
	helper.AssertLacksPermission(sub, PermByName(first))
	helper.AssertHasPermission(sub, PermByName(third))
}

// TestDelAllPermissions tests wiping a subject's direct grants
func TestDelAllPermissions(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("wipe")
	names := []string{helper.NewTestName("a.x"), helper.NewTestName("a.y")}
	_, err := service.CreatePermissions(ctx, names)
	assert.NoError(t, err)
	assert.NoError(t, service.AddPermissions(ctx, sub, PermsByName(names...)...))
	helper.AssertPermissionCount(sub, 2)

	assert.NoError(t, service.DelAllPermissions(ctx, sub))
	helper.AssertPermissionCount(sub, 0)
}

// TestHasPermissions tests the all-of and any-of effective set checks
func TestHasPermissions(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("check")
	held := helper.NewTestName("article.view")
	missing := helper.NewTestName("article.delete")
	_, err := service.CreatePermissions(ctx, []string{held, missing})
	assert.NoError(t, err)
	assert.NoError(t, service.AddPermission(ctx, sub, PermByName(held)))

	t.Run("HasPermissions requires all", func(t *testing.T) {
		ok, err := service.HasPermissions(ctx, sub, PermByName(held))
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.HasPermissions(ctx, sub, PermByName(held), PermByName(missing))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("HasAnyPermission requires one", func(t *testing.T) {
		ok, err := service.HasAnyPermission(ctx, sub, PermByName(held), PermByName(missing))
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.HasAnyPermission(ctx, sub, PermByName(missing))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unknown names count as not held", func(t *testing.T) {
		ok, err := service.HasPermission(ctx, sub, PermByName(helper.NewTestName("ghost")))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("A nonexistent name fails the all-of check", func(t *testing.T) {
		ghost := helper.NewTestName("article.ghost")

		ok, err := service.HasPermissions(ctx, sub, PermByName(held), PermByName(ghost))
		assert.NoError(t, err)
		assert.False(t, ok)

		ok, err = service.HasAnyPermission(ctx, sub, PermByName(held), PermByName(ghost))
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Unscoped name spanning scopes is held when one row is", func(t *testing.T) {
		scoped := helper.NewTestSubject("scoped")
		typeName := "models." + helper.NewTestName("Report")
		instance := NewResource(typeName, "7")

		p, err := service.CreateResourcePermission(ctx, instance, ActionView)
		assert.NoError(t, err)
		_, err = service.CreateResourcePermission(ctx, NewResource(typeName, ""), ActionView)
		assert.NoError(t, err)

		assert.NoError(t, service.AddPermission(ctx, scoped, Perm(*p)))

		// The bare name matches both the instance and the type row; holding
		// either one satisfies the reference.
		ok, err := service.HasPermissions(ctx, scoped, PermByName(p.Name))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

// TestEffectiveSetThroughRoles tests that role grants reach the holder
func TestEffectiveSetThroughRoles(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("member")
	roleName := helper.NewTestName("editor")
	viaRole := helper.NewTestName("article.update")
	direct := helper.NewTestName("article.view")

	role, err := helper.SetupRoleWithPermissions(roleName, viaRole)
	assert.NoError(t, err)

	_, err = service.CreatePermission(ctx, direct)
	assert.NoError(t, err)
	assert.NoError(t, service.AddPermission(ctx, sub, PermByName(direct)))
	assert.NoError(t, service.AddRole(ctx, sub, RoleOf(*role)))

	helper.AssertHasPermission(sub, PermByName(viaRole))
	helper.AssertHasPermission(sub, PermByName(direct))
	helper.AssertPermissionCount(sub, 2)

	names, err := service.GetPermissionNames(ctx, sub)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{viaRole, direct}, names)

	t.Run("Direct set excludes role grants", func(t *testing.T) {
		directSet, err := service.GetDirectPermissions(ctx, sub)
		assert.NoError(t, err)
		assert.Len(t, directSet, 1)
		assert.Equal(t, direct, directSet[0].Name)
	})

	t.Run("Revoking the role removes its grants", func(t *testing.T) {
		assert.NoError(t, service.DelRole(ctx, sub, RoleOf(*role)))
		helper.AssertLacksPermission(sub, PermByName(viaRole))
		helper.AssertHasPermission(sub, PermByName(direct))
	})
}

// TestEffectiveSetDeduplicates tests counting a permission held both ways once
func TestEffectiveSetDeduplicates(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("dedup")
	name := helper.NewTestName("article.view")
	role, err := helper.SetupRoleWithPermissions(helper.NewTestName("viewer"), name)
	assert.NoError(t, err)

	assert.NoError(t, service.AddPermission(ctx, sub, PermByName(name)))
	assert.NoError(t, service.AddRole(ctx, sub, RoleOf(*role)))

	helper.AssertPermissionCount(sub, 1)

	permissions, err := service.GetPermissions(ctx, sub)
	assert.NoError(t, err)
	assert.Len(t, permissions, 1)
}

// TestAddPermissionsToMany tests the cross-product bulk grant
func TestAddPermissionsToMany(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	names := []string{helper.NewTestName("bulk.read"), helper.NewTestName("bulk.write")}
	_, err := service.CreatePermissions(ctx, names)
	assert.NoError(t, err)

	subjects := make([]Subject, 5)
	for i := range subjects {
		subjects[i] = helper.NewTestSubject("bulk")
	}

	err = service.AddPermissionsToMany(ctx, PermsByName(names...), subjects)
	assert.NoError(t, err)

	for _, sub := range subjects {
		helper.AssertPermissionCount(sub, 2)
	}

	err = service.DelPermissionsFromMany(ctx, PermsByName(names[0]), subjects)
	assert.NoError(t, err)
	for _, sub := range subjects {
		helper.AssertPermissionCount(sub, 1)
		helper.AssertLacksPermission(sub, PermByName(names[0]))
	}
}

// TestWithPermissionNames tests the batch decoration against single lookups
func TestWithPermissionNames(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	alice := helper.NewTestSubject("alice")
	bob := helper.NewTestSubject("bob")
	idle := helper.NewTestSubject("idle")

	shared := helper.NewTestName("wiki.read")
	aliceOnly := helper.NewTestName("wiki.write")
	_, err := service.CreatePermissions(ctx, []string{shared, aliceOnly})
	assert.NoError(t, err)

	role, err := helper.SetupRoleWithPermissions(helper.NewTestName("reader"), shared)
	assert.NoError(t, err)

	assert.NoError(t, service.AddRole(ctx, alice, RoleOf(*role)))
	assert.NoError(t, service.AddRole(ctx, bob, RoleOf(*role)))
	assert.NoError(t, service.AddPermission(ctx, alice, PermByName(aliceOnly)))

	batch, err := service.WithPermissionNames(ctx, []Subject{alice, bob, idle})
	assert.NoError(t, err)
	assert.Len(t, batch, 3)

	for _, sub := range []SubjectRef{alice, bob, idle} {
		single, err := service.GetPermissionNames(ctx, sub)
		assert.NoError(t, err)
		assert.ElementsMatch(t, single, batch[sub])
	}
	assert.ElementsMatch(t, []string{shared, aliceOnly}, batch[alice])
	assert.ElementsMatch(t, []string{shared}, batch[bob])
	assert.Empty(t, batch[idle])
}

// TestSubjectsWithPermission tests the reverse lookup
func TestSubjectsWithPermission(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	name := helper.NewTestName("vault.open")
	_, err := service.CreatePermission(ctx, name)
	assert.NoError(t, err)

	alice := helper.NewTestSubject("alice")
	role, err := helper.SetupRoleWithPermissions(helper.NewTestName("keyholder"), name)
	assert.NoError(t, err)
	assert.NoError(t, service.AddPermission(ctx, alice, PermByName(name)))

	subjects, err := service.SubjectsWithPermission(ctx, PermByName(name))
	assert.NoError(t, err)
	assert.Contains(t, subjects, alice)
	assert.Contains(t, subjects, SubjectRef{Type: SubjectTypeRole, ID: role.ID})

	roleNames, err := service.RoleNamesWithPermission(ctx, PermByName(name))
	assert.NoError(t, err)
	assert.Equal(t, []string{role.Name}, roleNames)
}

// TestAccessibleResourceIDs tests instance id enumeration from grants
func TestAccessibleResourceIDs(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	sub := helper.NewTestSubject("enum")
	first := helper.NewTestResource("models.Article", "a")
	second := helper.NewTestResource("models.Article", "b")

	_, err := service.CreateViewPermission(ctx, first)
	assert.NoError(t, err)
	_, err = service.CreateViewPermission(ctx, second)
	assert.NoError(t, err)
	assert.NoError(t, service.GrantViewPermission(ctx, first, sub))
	assert.NoError(t, service.GrantViewPermission(ctx, second, sub))

	ids, err := service.AccessibleResourceIDs(ctx, sub, "models.Article", ActionView)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ResourceID(), second.ResourceID()}, ids)

	ids, err = service.AccessibleResourceIDs(ctx, sub, "models.Article", ActionDelete)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
