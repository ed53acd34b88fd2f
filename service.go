package aclkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Service is the authorization engine. It owns the permission and role
// catalogs, the polymorphic association tables binding subjects to
// permissions and holders to roles, and the query logic computing a
// subject's effective permission set.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Domain failures surface as
// sentinel errors with context:
//
//	err := service.AddPermission(ctx, user, aclkit.PermByName("article.view"))
//	if err != nil {
//	    if aclkit.IsNotFound(err) {
//	        // the named permission was never created
//	    }
//	    if dbkit.IsDuplicate(err) {
//	        // the subject already held one of the permissions
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	txMonitor *transactionMonitor
}

// NewService creates a new aclkit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := aclkit.NewService(db)
func NewService(db dbkit.IDB) *Service {
	return &Service{
		db:        db,
		txMonitor: newTransactionMonitor(),
	}
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error) {
	var logs []AuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.SubjectType != "" {
		q = q.Where("subject_type = ?", filter.SubjectType)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
