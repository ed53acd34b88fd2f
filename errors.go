package aclkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for aclkit operations.
var (
	// ErrInvalidArgument is returned on malformed input: empty required
	// collections, mismatched name/resource-id arity, a reference carrying
	// no identifying value.
	ErrInvalidArgument = errors.New("aclkit: invalid argument")

	// ErrNotFound is returned when a referenced role, or a permission
	// required by a mutation, does not exist.
	ErrNotFound = errors.New("aclkit: not found")

	// ErrPrecondition is returned when an operation is called against a
	// value that cannot support it, e.g. an instance-scoped helper on a
	// resource without an instance id.
	ErrPrecondition = errors.New("aclkit: precondition failed")

	// ErrUnauthorized is returned when a subject fails an authorization
	// check surfaced through the HTTP middleware.
	ErrUnauthorized = errors.New("aclkit: unauthorized")

	// ErrAlreadyGranted is returned by the idempotent grant variants when
	// the subject already holds the permission.
	ErrAlreadyGranted = errors.New("aclkit: permission already granted")

	// ErrRoleAlreadyAssigned is returned by the idempotent assignment
	// variants when the holder already has the role.
	ErrRoleAlreadyAssigned = errors.New("aclkit: role already assigned")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("aclkit: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err         error  // Underlying sentinel error
	Message     string // Additional context
	SubjectType string // Subject involved (if applicable)
	SubjectID   string
	Permission  string // Permission name involved (if applicable)
	Role        string // Role name involved (if applicable)
	Resource    string // Resource type involved (if applicable)
	ResourceID  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithSubject adds subject information to the error.
func (e *Error) WithSubject(s Subject) *Error {
	e.SubjectType = s.SubjectType()
	e.SubjectID = s.SubjectID()
	return e
}

// WithPermission adds the permission name to the error.
func (e *Error) WithPermission(name string) *Error {
	e.Permission = name
	return e
}

// WithRole adds the role name to the error.
func (e *Error) WithRole(name string) *Error {
	e.Role = name
	return e
}

// WithResource adds resource information to the error.
func (e *Error) WithResource(resourceType, resourceID string) *Error {
	e.Resource = resourceType
	e.ResourceID = resourceID
	return e
}

// IsInvalidArgument checks if an error is due to malformed input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound checks if an error is due to a missing role or permission.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPrecondition checks if an error is due to a failed precondition.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// IsUnauthorized checks if an error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsAlreadyGranted checks if an error reports a duplicate grant.
func IsAlreadyGranted(err error) bool {
	return errors.Is(err, ErrAlreadyGranted)
}

// IsRoleAlreadyAssigned checks if an error reports a duplicate assignment.
func IsRoleAlreadyAssigned(err error) bool {
	return errors.Is(err, ErrRoleAlreadyAssigned)
}
