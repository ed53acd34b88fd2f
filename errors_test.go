package aclkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelErrors tests that all sentinel errors are properly defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "aclkit: invalid argument"},
		{"ErrNotFound", ErrNotFound, "aclkit: not found"},
		{"ErrPrecondition", ErrPrecondition, "aclkit: precondition failed"},
		{"ErrUnauthorized", ErrUnauthorized, "aclkit: unauthorized"},
		{"ErrAlreadyGranted", ErrAlreadyGranted, "aclkit: permission already granted"},
		{"ErrRoleAlreadyAssigned", ErrRoleAlreadyAssigned, "aclkit: role already assigned"},
		{"ErrDatabaseError", ErrDatabaseError, "aclkit: database error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.NotNil(t, tt.err)
		})
	}
}

// TestError_Error tests the Error method of Error struct
func TestError_Error(t *testing.T) {
	t.Run("With message", func(t *testing.T) {
		err := &Error{
			Err:     ErrNotFound,
			Message: "permission 'article.fly' does not exist",
		}
		expected := "aclkit: not found: permission 'article.fly' does not exist"
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := &Error{
			Err: ErrNotFound,
		}
		assert.Equal(t, "aclkit: not found", err.Error())
	})
}

// TestError_Unwrap tests the Unwrap method
func TestError_Unwrap(t *testing.T) {
	err := &Error{
		Err:     ErrNotFound,
		Message: "test message",
	}

	assert.Equal(t, ErrNotFound, err.Unwrap())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

// TestError_Builders tests the context builder methods
func TestError_Builders(t *testing.T) {
	err := NewError(ErrUnauthorized, "action not permitted").
		WithSubject(NewSubject("user", "u1")).
		WithPermission("article.update").
		WithRole("editor").
		WithResource("models.Article", "42")

	assert.Equal(t, "user", err.SubjectType)
	assert.Equal(t, "u1", err.SubjectID)
	assert.Equal(t, "article.update", err.Permission)
	assert.Equal(t, "editor", err.Role)
	assert.Equal(t, "models.Article", err.Resource)
	assert.Equal(t, "42", err.ResourceID)
}

// TestErrorPredicates tests the IsXxx helper functions
func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"IsInvalidArgument", NewError(ErrInvalidArgument, ""), IsInvalidArgument},
		{"IsNotFound", NewError(ErrNotFound, ""), IsNotFound},
		{"IsPrecondition", NewError(ErrPrecondition, ""), IsPrecondition},
		{"IsUnauthorized", NewError(ErrUnauthorized, ""), IsUnauthorized},
		{"IsAlreadyGranted", NewError(ErrAlreadyGranted, ""), IsAlreadyGranted},
		{"IsRoleAlreadyAssigned", NewError(ErrRoleAlreadyAssigned, ""), IsRoleAlreadyAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
			assert.False(t, tt.predicate(errors.New("unrelated")))
			assert.False(t, tt.predicate(nil))
		})
	}

	t.Run("Wrapped errors still match", func(t *testing.T) {
		wrapped := fmt.Errorf("while granting: %w", NewError(ErrNotFound, "missing"))
		assert.True(t, IsNotFound(wrapped))
	})
}
