package aclkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWithSubject tests storing and retrieving the subject from context
func TestWithSubject(t *testing.T) {
	ctx := context.Background()

	_, ok := SubjectFromContext(ctx)
	assert.False(t, ok)

	ctx = WithSubject(ctx, NewSubject("user", "u1"))
	ref, ok := SubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user", ref.Type)
	assert.Equal(t, "u1", ref.ID)
}

// TestWithSubject_NormalizesToRef tests that any Subject value is stored as a ref
func TestWithSubject_NormalizesToRef(t *testing.T) {
	role := &Role{ID: "r1", Name: "admin"}
	ctx := WithSubject(context.Background(), role)

	ref, ok := SubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, SubjectTypeRole, ref.Type)
	assert.Equal(t, "r1", ref.ID)
}

// TestMustSubjectFromContext tests the panicking accessor
func TestMustSubjectFromContext(t *testing.T) {
	ctx := WithSubject(context.Background(), NewSubject("user", "u1"))
	assert.NotPanics(t, func() {
		ref := MustSubjectFromContext(ctx)
		assert.Equal(t, "u1", ref.ID)
	})

	assert.Panics(t, func() {
		MustSubjectFromContext(context.Background())
	})
}

// TestGetActorID tests actor resolution including the subject fallback
func TestGetActorID(t *testing.T) {
	t.Run("Explicit actor", func(t *testing.T) {
		ctx := WithActorID(context.Background(), "admin-7")
		assert.Equal(t, "admin-7", GetActorID(ctx))
	})

	t.Run("Falls back to subject", func(t *testing.T) {
		ctx := WithSubject(context.Background(), NewSubject("user", "u1"))
		assert.Equal(t, "u1", GetActorID(ctx))
	})

	t.Run("Explicit actor wins over subject", func(t *testing.T) {
		ctx := WithSubject(context.Background(), NewSubject("user", "u1"))
		ctx = WithActorID(ctx, "admin-7")
		assert.Equal(t, "admin-7", GetActorID(ctx))
	})

	t.Run("Empty when nothing set", func(t *testing.T) {
		assert.Equal(t, "", GetActorID(context.Background()))
	})
}

// TestRequestMetadata tests the ip, user agent and request id accessors
func TestRequestMetadata(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetIPAddress(ctx))
	assert.Equal(t, "", GetUserAgent(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = WithIPAddress(ctx, "10.0.0.8")
	ctx = WithUserAgent(ctx, "curl/8.0")
	ctx = WithRequestID(ctx, "req-123")

	assert.Equal(t, "10.0.0.8", GetIPAddress(ctx))
	assert.Equal(t, "curl/8.0", GetUserAgent(ctx))
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

// TestWithChecker tests storing and retrieving the checker from context
func TestWithChecker(t *testing.T) {
	assert.Nil(t, CheckerFromContext(context.Background()))

	checker := NewChecker(NewSubject("user", "u1"), nil, []string{"editor"})
	ctx := WithChecker(context.Background(), checker)

	got := CheckerFromContext(ctx)
	assert.NotNil(t, got)
	assert.True(t, got.HasRole("editor"))
}

// TestAuditContext tests the aggregate audit context round-trip
func TestAuditContext(t *testing.T) {
	ac := AuditContext{
		ActorID:   "admin-7",
		IPAddress: "10.0.0.8",
		UserAgent: "curl/8.0",
		RequestID: "req-123",
	}

	ctx := WithAuditContext(context.Background(), ac)
	assert.Equal(t, ac, GetAuditContext(ctx))
}

// TestAuditContext_PartialFields tests that empty fields are not stored
func TestAuditContext_PartialFields(t *testing.T) {
	ctx := WithSubject(context.Background(), NewSubject("user", "u1"))
	ctx = WithAuditContext(ctx, AuditContext{IPAddress: "10.0.0.8"})

	got := GetAuditContext(ctx)
	assert.Equal(t, "u1", got.ActorID)
	assert.Equal(t, "10.0.0.8", got.IPAddress)
	assert.Equal(t, "", got.UserAgent)
	assert.Equal(t, "", got.RequestID)
}
