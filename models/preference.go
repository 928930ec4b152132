package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CurrentCourseIDKey is the only preference key the core reads or writes.
// Other preference keys belong to UI collaborators outside the kernel.
const CurrentCourseIDKey = "current_course_id"

// Preference is a single key/value row in the app preference map.
type Preference struct {
	bun.BaseModel `bun:"table:preferences,alias:preference"`

	Key       string    `bun:"key,pk" json:"key"`
	Value     string    `bun:"value" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// GetID implements base.Entity.
func (p *Preference) GetID() interface{} { return p.Key }

// GetCreatedAt implements base.Entity; preferences have no creation time
// distinct from their last update.
func (p *Preference) GetCreatedAt() time.Time { return p.UpdatedAt }

// GetUpdatedAt implements base.Entity.
func (p *Preference) GetUpdatedAt() time.Time { return p.UpdatedAt }

// TableName implements base.TableNamer.
func (p *Preference) TableName() string { return "preferences" }
