package aclkit

import (
	"net/http"
)

// Middleware provides HTTP middleware for permission and role checking.
type Middleware struct {
	service      *Service
	getSubject   func(*http.Request) (Subject, bool)
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := aclkit.NewMiddleware(service,
//	    aclkit.WithSubjectExtractor(func(r *http.Request) (aclkit.Subject, bool) {
//	        return aclkit.SubjectFromContext(r.Context())
//	    }),
//	)
func NewMiddleware(service *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getSubject:   defaultGetSubject,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithSubjectExtractor sets a custom function to extract the subject from a
// request.
func WithSubjectExtractor(fn func(*http.Request) (Subject, bool)) MiddlewareOption {
	return func(m *Middleware) {
		m.getSubject = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetSubject(r *http.Request) (Subject, bool) {
	ref, ok := SubjectFromContext(r.Context())
	return ref, ok
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsUnauthorized(err) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if IsInvalidArgument(err) || IsNotFound(err) || IsPrecondition(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// ResourceExtractor extracts the target resource from an HTTP request.
type ResourceExtractor func(*http.Request) (Resource, error)

// ResourceFromParam creates a ResourceExtractor that reads the resource id
// from URL parameters. Compatible with chi, gorilla/mux, and standard
// library patterns.
//
// Example:
//
//	// For route /articles/{articleID}
//	mw.RequireAction(aclkit.ActionUpdate, aclkit.ResourceFromParam("article", "articleID"))
func ResourceFromParam(resourceType, paramName string) ResourceExtractor {
	return func(r *http.Request) (Resource, error) {
		id := r.PathValue(paramName)
		if id == "" {
			// Try context (set by router middleware)
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					id = s
				}
			}
		}
		if id == "" {
			return nil, NewError(ErrInvalidArgument, "resource id not found in request").
				WithResource(resourceType, "")
		}
		return NewResource(resourceType, id), nil
	}
}

// ResourceFromQuery creates a ResourceExtractor that reads the resource id
// from query parameters.
//
// Example:
//
//	// For route /api/files?article_id=a1
//	mw.RequireAction(aclkit.ActionView, aclkit.ResourceFromQuery("article", "article_id"))
func ResourceFromQuery(resourceType, queryParam string) ResourceExtractor {
	return func(r *http.Request) (Resource, error) {
		id := r.URL.Query().Get(queryParam)
		if id == "" {
			return nil, NewError(ErrInvalidArgument, "resource id not found in query").
				WithResource(resourceType, "")
		}
		return NewResource(resourceType, id), nil
	}
}

// ResourceFromHeader creates a ResourceExtractor that reads the resource id
// from a header.
//
// Example:
//
//	// For header X-Account-ID: acc_123
//	mw.RequireAction(aclkit.ActionUpdate, aclkit.ResourceFromHeader("account", "X-Account-ID"))
func ResourceFromHeader(resourceType, headerName string) ResourceExtractor {
	return func(r *http.Request) (Resource, error) {
		id := r.Header.Get(headerName)
		if id == "" {
			return nil, NewError(ErrInvalidArgument, "resource id not found in header").
				WithResource(resourceType, "")
		}
		return NewResource(resourceType, id), nil
	}
}

// StaticResource creates a ResourceExtractor that always returns the same
// resource. Use an empty id for type-level checks.
//
// Example:
//
//	mw.RequireAction(aclkit.ActionCreate, aclkit.StaticResource("article", ""))
func StaticResource(resourceType, resourceID string) ResourceExtractor {
	return func(r *http.Request) (Resource, error) {
		return NewResource(resourceType, resourceID), nil
	}
}

// RequireAction creates middleware that authorizes an action on the
// extracted resource before the handler runs. The per-instance permission or
// the type-wide "<action>Any" permission both satisfy it.
//
// Example:
//
//	router.With(mw.RequireAction(aclkit.ActionUpdate, aclkit.ResourceFromParam("article", "articleID"))).
//	    Put("/articles/{articleID}", updateArticleHandler)
func (m *Middleware) RequireAction(action string, extractor ResourceExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub, ok := m.getSubject(r)
			if !ok {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "no subject in request"))
				return
			}

			resource, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			if err := m.service.Authorize(ctx, sub, action, resource); err != nil {
				m.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission creates middleware that requires a permission by bare
// name, regardless of resource scope.
//
// Example:
//
//	router.With(mw.RequirePermission("reports.export")).
//	    Get("/reports/export", exportHandler)
func (m *Middleware) RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub, ok := m.getSubject(r)
			if !ok {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "no subject in request"))
				return
			}

			allowed, err := m.service.HasPermission(ctx, sub, PermByName(name))
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				ref := refOf(sub)
				m.errorHandler(w, r, NewError(ErrUnauthorized, "missing required permission").
					WithSubject(ref).
					WithPermission(name))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole creates middleware that requires a role by name.
//
// Example:
//
//	router.With(mw.RequireRole("admin")).
//	    Post("/settings", updateSettingsHandler)
func (m *Middleware) RequireRole(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub, ok := m.getSubject(r)
			if !ok {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "no subject in request"))
				return
			}

			has, err := m.service.HasRole(ctx, sub, RoleByName(name))
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !has {
				ref := refOf(sub)
				m.errorHandler(w, r, NewError(ErrUnauthorized, "missing required role").
					WithSubject(ref).
					WithRole(name))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole creates middleware that requires any of the named roles.
//
// Example:
//
//	router.With(mw.RequireAnyRole("admin", "owner")).
//	    Delete("/accounts/{accountID}", deleteAccountHandler)
func (m *Middleware) RequireAnyRole(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub, ok := m.getSubject(r)
			if !ok {
				m.errorHandler(w, r, NewError(ErrUnauthorized, "no subject in request"))
				return
			}

			has, err := m.service.HasAnyRole(ctx, sub, RolesByName(names...)...)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !has {
				ref := refOf(sub)
				m.errorHandler(w, r, NewError(ErrUnauthorized, "missing required role").
					WithSubject(ref))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadChecker creates middleware that loads the subject's Checker into
// context. Use this when you want to decide in the handler rather than in
// middleware.
//
// Example:
//
//	router.With(mw.LoadChecker()).Get("/dashboard", dashboardHandler)
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := aclkit.CheckerFromContext(r.Context())
//	    if checker != nil && checker.HasRole("admin") {
//	        // Show admin features
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub, ok := m.getSubject(r)
			if !ok {
				// No subject, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			checker, err := m.service.GetChecker(ctx, sub)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithChecker(ctx, checker)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information from
// the request and adds it to the context for grant and assignment
// operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			ctx = WithUserAgent(ctx, r.UserAgent())

			// Request ID is commonly set by other middleware
			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			if sub, ok := m.getSubject(r); ok {
				ctx = WithSubject(ctx, sub)
				ctx = WithActorID(ctx, sub.SubjectID())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
