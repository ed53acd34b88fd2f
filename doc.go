// Package aclkit provides database-backed access control with permissions,
// roles and per-resource policies.
//
// ACLKit stores permissions and roles as rows and binds them to arbitrary
// subjects (users, service accounts, API tokens, or roles themselves)
// through polymorphic association tables. Nothing about the subject or the
// protected resource is assumed beyond a (type, id) pair.
//
// # Core Concepts
//
// Subject: anything that can hold permissions or roles, identified by a
// (SubjectType, SubjectID) pair. Roles are subjects too, which is how a role
// carries its permission bundle.
//
// Permission: a named capability, optionally scoped to a resource type
// ("article.viewAny") or to one resource instance ("article.view" on article
// 42). The triple (name, resource type, resource id) is unique.
//
// Role: a reusable permission bundle. A subject's effective permission set
// is the union of its direct grants and the grants of every role it holds.
//
// Resource: a domain entity exposing (ResourceType, ResourceID). Per-action
// permissions are named "<prefix>.<action>" where the prefix is derived from
// the type tag (overridable via PermissionPrefixer).
//
// # Key Features
//
//   - Entity-agnostic: no foreign keys into your user or domain tables
//   - Roles as subjects: one grant table serves users and roles alike
//   - Per-instance and per-type permissions: "article.view" vs "article.viewAny"
//   - Policy decisions: Can(subject, action, resource) resolves both candidates
//   - Batched operations: multi-permission and multi-subject grants in few queries
//   - Detailed audit logging: who, what, when, request metadata
//   - DBKit integration: uses your existing database connection
//
// # Basic Usage
//
//	// 1. Create the service
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := aclkit.NewService(db)
//
//	// 2. Run migrations
//	db.Migrate(ctx, aclkit.NewMigrationService(service).Migrations())
//
//	// 3. Create permissions and roles
//	service.CreatePermission(ctx, "reports.export")
//	admin, _ := service.CreateRole(ctx, "admin")
//
//	// 4. Grant and assign
//	service.AddPermission(ctx, admin, aclkit.PermByName("reports.export"))
//	service.AddRole(ctx, user, aclkit.RoleOf(*admin))
//
//	// 5. Check
//	ok, _ := service.HasPermission(ctx, user, aclkit.PermByName("reports.export"))
//
// # Resource Policies
//
//	article := myArticle // implements aclkit.Resource
//
//	// Generate the CRUD tuple for this instance: view, update, delete
//	service.CreateCrudPermissions(ctx, article)
//	service.GrantViewPermission(ctx, article, user)
//
//	// Decide: instance permission or the type-wide "Any" variant
//	ok, _ := service.CanView(ctx, user, article)
//
// # Middleware Usage
//
//	mw := aclkit.NewMiddleware(service)
//
//	router.With(mw.RequireAction(aclkit.ActionUpdate,
//	    aclkit.ResourceFromParam("article", "articleID"))).
//	    Put("/articles/{articleID}", updateArticleHandler)
//
//	router.With(mw.RequireRole("admin")).
//	    Post("/settings", updateSettingsHandler)
//
// # Audit Log
//
// Grants, revocations, role assignments and unassignments are logged with:
//   - Actor (who made the change)
//   - Target subject
//   - Permission or role names involved
//   - Timestamp
//   - Request metadata (IP, user agent, request ID)
package aclkit
