package aclkit

import (
	"context"
)

// Context keys for aclkit values.
type contextKey string

const (
	contextKeySubject   contextKey = "aclkit:subject"
	contextKeyActorID   contextKey = "aclkit:actor_id"
	contextKeyIPAddress contextKey = "aclkit:ip_address"
	contextKeyUserAgent contextKey = "aclkit:user_agent"
	contextKeyRequestID contextKey = "aclkit:request_id"
	contextKeyChecker   contextKey = "aclkit:checker"
)

// WithSubject adds the subject being checked to the context.
func WithSubject(ctx context.Context, sub Subject) context.Context {
	return context.WithValue(ctx, contextKeySubject, refOf(sub))
}

// SubjectFromContext retrieves the subject from context.
// The second return is false if no subject was set.
func SubjectFromContext(ctx context.Context) (SubjectRef, bool) {
	if v := ctx.Value(contextKeySubject); v != nil {
		if ref, ok := v.(SubjectRef); ok {
			return ref, true
		}
	}
	return SubjectRef{}, false
}

// MustSubjectFromContext retrieves the subject from context.
// Panics if not set.
func MustSubjectFromContext(ctx context.Context) SubjectRef {
	ref, ok := SubjectFromContext(ctx)
	if !ok {
		panic("aclkit: subject not in context")
	}
	return ref
}

// WithActorID adds an actor ID to the context.
// This is the identity performing the mutation (for audit purposes).
// Often the same as the subject, but can differ for admin actions.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Falls back to the subject's id if no actor was explicitly set.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if ref, ok := SubjectFromContext(ctx); ok {
		return ref.ID
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithChecker adds a Checker to the context.
// This is set by middleware and can be retrieved in handlers.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// CheckerFromContext retrieves the Checker from context.
// Returns nil if not set.
func CheckerFromContext(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}

// AuditContext holds all audit-related information from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}
