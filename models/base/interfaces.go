package base

import (
	"context"
	"time"
)

// Entity represents the basic interface for all model entities.
type Entity interface {
	GetID() interface{}
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// Validator represents entities that can validate themselves.
type Validator interface {
	Validate() error
}

// QueryOptions constrains a List call. Zero values mean "no filter" / "use
// repository default page size".
type QueryOptions struct {
	Filters  map[string]interface{}
	Page     int
	PageSize int
}

// Repository represents a generic repository interface for database operations.
type Repository[T Entity] interface {
	Create(ctx context.Context, entity T) error
	FindByID(ctx context.Context, id interface{}) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id interface{}) error
	List(ctx context.Context, options *QueryOptions) ([]T, error)
}

// TableNamer is implemented by models to specify their database table name.
type TableNamer interface {
	TableName() string
}

// BeforeAppender is implemented by models that need to execute logic before
// being appended to the database.
type BeforeAppender interface {
	BeforeAppend() error
}

// DatabaseError represents database operation errors.
type DatabaseError struct {
	Op  string // Operation that failed (e.g., "create", "update")
	Err error  // Original error
}

// Error returns the error message.
func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return "database error during " + e.Op
	}
	return "database error during " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the original error.
func (e *DatabaseError) Unwrap() error {
	return e.Err
}
