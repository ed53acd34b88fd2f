package aclkit

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

// whereSubjectEffective restricts a query over acl_subject_permissions to the
// rows that make up the subject's effective grant set: its own rows plus the
// rows of every role assigned to it. The role lookup is an IN-subquery, so
// the whole effective set costs one round trip regardless of role count.
func whereSubjectEffective(q *bun.SelectQuery, sub Subject) *bun.SelectQuery {
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			WhereOr("(sp.subject_type = ? AND sp.subject_id = ?)",
				sub.SubjectType(), sub.SubjectID()).
			WhereOr("(sp.subject_type = ? AND sp.subject_id IN (SELECT role_id FROM acl_holder_roles WHERE holder_type = ? AND holder_id = ?))",
				SubjectTypeRole, sub.SubjectType(), sub.SubjectID())
	})
}

// whereSubjectDirect restricts a query over acl_subject_permissions to the
// subject's own rows only, ignoring role-derived grants.
func whereSubjectDirect(q *bun.SelectQuery, sub Subject) *bun.SelectQuery {
	return q.Where("sp.subject_type = ? AND sp.subject_id = ?",
		sub.SubjectType(), sub.SubjectID())
}

// whereHolder restricts a query over acl_holder_roles to one holder.
func whereHolder(q *bun.SelectQuery, holder Subject) *bun.SelectQuery {
	return q.Where("hr.holder_type = ? AND hr.holder_id = ?",
		holder.SubjectType(), holder.SubjectID())
}

// permissionsByID fetches permission rows for the given ids in one query.
func (s *Service) permissionsByID(ctx context.Context, ids []string) ([]Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var permissions []Permission
	err := dbkit.WithErr1(
		s.db.NewSelect().Model(&permissions).Where("p.id IN (?)", bun.In(ids)).Scan(ctx),
		"GetPermissionsByID").Err()
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

// rolesByID fetches role rows for the given ids in one query.
func (s *Service) rolesByID(ctx context.Context, ids []string) ([]Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var roles []Role
	err := dbkit.WithErr1(
		s.db.NewSelect().Model(&roles).Where("r.id IN (?)", bun.In(ids)).Scan(ctx),
		"GetRolesByID").Err()
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// logAudit writes an audit entry filled in with request metadata from
// context. Audit failures are the caller's to ignore; mutations never fail
// because the audit insert did.
func (s *Service) logAudit(ctx context.Context, action AuditAction, sub Subject, permissions, roles []string) error {
	audit := GetAuditContext(ctx)
	entry := &AuditLog{
		ActorID:     audit.ActorID,
		Action:      action,
		SubjectType: sub.SubjectType(),
		SubjectID:   sub.SubjectID(),
		Permissions: permissions,
		Roles:       roles,
		IPAddress:   audit.IPAddress,
		UserAgent:   audit.UserAgent,
		RequestID:   audit.RequestID,
		Timestamp:   time.Now(),
	}
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// ============================================================================
// RETRY SUPPORT
// ============================================================================

// withRetry runs fn with exponential backoff on transient database errors.
// Non-transient errors return immediately. Outcomes feed the transaction
// monitor in both cases.
func (s *Service) withRetry(ctx context.Context, maxAttempts int, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if s.txMonitor != nil {
				s.txMonitor.recordTransaction(0, true)
			}
			return nil
		}

		lastErr = err

		if !isTransientError(err) {
			if s.txMonitor != nil {
				s.txMonitor.recordTransaction(0, false)
			}
			return err
		}

		if attempt == maxAttempts-1 {
			break
		}

		// Exponential backoff with jitter
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		jitter := time.Duration(float64(backoff) * 0.1 * (0.5 + rand.Float64()))
		time.Sleep(backoff + jitter)
	}

	if s.txMonitor != nil {
		s.txMonitor.recordTransaction(0, false)
	}

	return lastErr
}

// isTransientError checks if an error is transient and can be retried.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	// Domain errors never get better by retrying.
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// PostgreSQL transient errors
	transientErrors := []string{
		"connection",
		"timeout",
		"deadlock",
		"lock wait timeout",
		"connection refused",
		"connection reset",
		"broken pipe",
		"temporary failure",
		"try again",
		"resource temporarily unavailable",
	}

	for _, transient := range transientErrors {
		if strings.Contains(errStr, transient) {
			return true
		}
	}

	return false
}
