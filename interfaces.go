package aclkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context, tx *Service) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	CheckSchema(ctx context.Context) error
}

// PoolManager defines the connection pool management interface
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	OptimizeConnectionPool() error
	ResetConnectionPool() error
}

// Granter defines the grant engine interface
type Granter interface {
	AddPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error
	DelPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error
	SetPermissions(ctx context.Context, sub Subject, refs ...PermissionRef) error
	GetPermissions(ctx context.Context, sub Subject) ([]Permission, error)
	HasPermission(ctx context.Context, sub Subject, ref PermissionRef) (bool, error)
}

// RoleManager defines the role assignment interface
type RoleManager interface {
	AddRoles(ctx context.Context, sub Subject, refs ...RoleRef) error
	DelRoles(ctx context.Context, sub Subject, refs ...RoleRef) error
	SetRoles(ctx context.Context, sub Subject, refs ...RoleRef) error
	GetRoles(ctx context.Context, sub Subject) ([]Role, error)
	HasRole(ctx context.Context, sub Subject, ref RoleRef) (bool, error)
}

// Authorizer defines the decision interface handlers depend on
type Authorizer interface {
	Can(ctx context.Context, sub Subject, action string, r Resource) (bool, error)
	Authorize(ctx context.Context, sub Subject, action string, r Resource) error
}

// TransactionMonitor defines the transaction monitoring interface
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
