package aclkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// HealthService provides health monitoring functionality as an extension to Service
type HealthService struct {
	*Service
}

// NewHealthService creates a new health service extension
func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service}
}

// Health performs a comprehensive health check of the database connection.
// Returns detailed status including latency, connection pool statistics, and error information.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	// Check if we have a DBKit instance
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}

	// If we're in a transaction or have a different type, do a basic ping
	return dbkit.HealthStatus{
		Healthy: hs.IsHealthy(ctx),
		Error:   "Limited health check - not a DBKit instance",
	}
}

// IsHealthy performs a simple health check of the database connection.
// Returns true if the database is reachable, false otherwise.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	// Check if we have a DBKit instance
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}

	// If we're in a transaction or have a different type, try to ping
	var count int
	err := hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &count)
	return err == nil
}

// Ping performs a basic connectivity test to the database.
// Returns an error if the database is not reachable.
func (hs *HealthService) Ping(ctx context.Context) error {
	// Use a simple query to test connectivity
	var result int
	return hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &result)
}

// CheckSchema verifies the authorization tables are present and reachable.
// Returns the first error hit while probing them.
func (hs *HealthService) CheckSchema(ctx context.Context) error {
	all := func(q *bun.SelectQuery) *bun.SelectQuery { return q }
	probes := []func(ctx context.Context, db dbkit.IDB) (int, error){
		func(ctx context.Context, db dbkit.IDB) (int, error) {
			return dbkit.Count[Permission](ctx, db, all)
		},
		func(ctx context.Context, db dbkit.IDB) (int, error) {
			return dbkit.Count[Role](ctx, db, all)
		},
		func(ctx context.Context, db dbkit.IDB) (int, error) {
			return dbkit.Count[SubjectPermission](ctx, db, all)
		},
		func(ctx context.Context, db dbkit.IDB) (int, error) {
			return dbkit.Count[HolderRole](ctx, db, all)
		},
	}
	for _, probe := range probes {
		if _, err := probe(ctx, hs.db); err != nil {
			return dbkit.WithErr1(err, "CheckSchema").Err()
		}
	}
	return nil
}
