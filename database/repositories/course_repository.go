// Package repositories holds the entity-specific repositories built on top
// of the generic base repository.
package repositories

import (
	"context"

	repobase "github.com/rollcall/server/database/repositories/base"
	"github.com/rollcall/server/models"
	"github.com/uptrace/bun"
)

// CourseRepository backs Course's simple CRUD paths with the shared generic
// base repository; operations that need cross-table transactional behavior
// (delete cascade, attendance recording) stay in database.Store.
type CourseRepository struct {
	*repobase.Repository[*models.Course]
}

// NewCourseRepository builds a CourseRepository over the courses table.
func NewCourseRepository(db *bun.DB) *CourseRepository {
	return &CourseRepository{repobase.NewRepository[*models.Course](db, "courses", "Course")}
}

// FindByID retrieves a course by its opaque string id.
func (r *CourseRepository) FindByID(ctx context.Context, courseID string) (*models.Course, error) {
	return r.Repository.FindByID(ctx, courseID)
}
