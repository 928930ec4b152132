package models

import (
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rollcall/server/models/base"
	"github.com/uptrace/bun"
)

// Course is a single classroom the professor has configured for attendance
// tracking. Its id is an opaque, immutable 128-bit value minted at creation.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:course"`

	base.StringIDModel

	Name           string   `bun:"name,notnull" json:"name"`
	PrimarySection string   `bun:"primary_section,notnull" json:"primary_section"`
	Sections       []string `bun:"sections,array,notnull" json:"sections"`
	ProfessorName  string   `bun:"professor_name" json:"professor_name"`
	OfficeHours    string   `bun:"office_hours" json:"office_hours"`
	News           string   `bun:"news" json:"news"`
	TotalStudents  int      `bun:"total_students,notnull,default:0" json:"total_students"`
	LogoPath       string   `bun:"logo_path" json:"logo_path,omitempty"`

	// ConfirmationCode and ConfirmationCodeExpiresAt are the Code Engine's
	// authoritative storage for a course's current code; the Code Engine
	// holds only a cached projection of these two columns.
	ConfirmationCode          *string    `bun:"confirmation_code" json:"-"`
	ConfirmationCodeExpiresAt *time.Time `bun:"confirmation_code_expires_at" json:"-"`
}

// GetID implements base.Entity.
func (c *Course) GetID() interface{} { return c.ID }

// GetCreatedAt implements base.Entity.
func (c *Course) GetCreatedAt() time.Time { return c.CreatedAt }

// GetUpdatedAt implements base.Entity.
func (c *Course) GetUpdatedAt() time.Time { return c.UpdatedAt }

// TableName implements base.TableNamer.
func (c *Course) TableName() string { return "courses" }

// CourseDraft is the input shape for creating or replacing a course. It is
// validated with go-ozzo/ozzo-validation rather than a hand-rolled if-chain.
type CourseDraft struct {
	Name           string   `json:"name"`
	PrimarySection string   `json:"primary_section"`
	Sections       []string `json:"sections"`
	ProfessorName  string   `json:"professor_name"`
	OfficeHours    string   `json:"office_hours"`
	News           string   `json:"news"`
	TotalStudents  int      `json:"total_students"`
	LogoPath       string   `json:"logo_path,omitempty"`
}

// Validate implements base.Validator. It normalizes Name and Sections
// in-place (trim, dedupe-sort) before checking the field rules, so a caller
// can read back the canonical form after a successful Validate.
func (d *CourseDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.PrimarySection = strings.TrimSpace(d.PrimarySection)
	d.normalizeSections()

	return validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.PrimarySection, validation.Required),
		validation.Field(&d.Sections, validation.Required, validation.By(d.validateSectionsContainPrimary)),
		validation.Field(&d.TotalStudents, validation.Min(0)),
	)
}

func (d *CourseDraft) normalizeSections() {
	seen := make(map[string]bool, len(d.Sections))
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	d.Sections = out
}

func (d *CourseDraft) validateSectionsContainPrimary(interface{}) error {
	if d.PrimarySection == "" {
		return nil // reported separately by the PrimarySection rule
	}
	for _, s := range d.Sections {
		if s == d.PrimarySection {
			return nil
		}
	}
	return validation.NewError("course_sections_missing_primary", "sections must contain the primary section")
}

// NormalizedName returns the form used for the case-insensitive uniqueness
// index on courses.name (trimmed, lowercased).
func NormalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
