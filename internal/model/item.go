package model

import (
	"errors"
	"strings"
)

// Status is the lifecycle flag of an item.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// Flip returns the other status.
func (s Status) Flip() Status {
	if s == StatusActive {
		return StatusCompleted
	}
	return StatusActive
}

// Category is the closed label set an item collection is parameterized by.
type Category interface {
	~string
	Valid() bool
}

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrUnknownCategory = errors.New("unknown category")
)

// Item is the domain model for a task or quest entry.
// The JSON shape matches what the browser front-end stored.
type Item[C Category] struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Status      Status  `json:"status" yaml:"status"`
	Category    C       `json:"category" yaml:"category"`
	CreatedAt   int64   `json:"createdAt" yaml:"createdAt"`
	AssignedTo  *string `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
}

// Done reports whether the item is completed.
func (it Item[C]) Done() bool { return it.Status == StatusCompleted }

// Assignee returns the assignee, or "" when none is set.
func (it Item[C]) Assignee() string {
	if it.AssignedTo == nil {
		return ""
	}
	return *it.AssignedTo
}

// Fields are the caller-supplied parts of a new item.
type Fields[C Category] struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Category    C       `json:"category" yaml:"category"`
	AssignedTo  *string `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
}

// Validate checks the title and category. An empty category is accepted;
// Normalize fills in the collection's fallback.
func (f Fields[C]) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrEmptyTitle
	}
	if f.Category != "" && !f.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// Normalize trims the title and applies fallback when the category is empty.
func (f Fields[C]) Normalize(fallback C) Fields[C] {
	f.Title = strings.TrimSpace(f.Title)
	if f.Category == "" {
		f.Category = fallback
	}
	if f.AssignedTo != nil && strings.TrimSpace(*f.AssignedTo) == "" {
		f.AssignedTo = nil
	}
	return f
}

// FieldsOf extracts the mutable fields of it.
func FieldsOf[C Category](it Item[C]) Fields[C] {
	return Fields[C]{
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		AssignedTo:  it.AssignedTo,
	}
}

// Patch is a partial update. Nil members are left untouched.
// There is no way to express a change of ID or CreatedAt.
type Patch[C Category] struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *Status `json:"status,omitempty"`
	Category      *C      `json:"category,omitempty"`
	AssignedTo    *string `json:"assignedTo,omitempty"`
	ClearAssignee bool    `json:"clearAssignee,omitempty"`
}

// Empty reports whether p would change nothing.
func (p Patch[C]) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Category == nil && p.AssignedTo == nil && !p.ClearAssignee
}

// Validate rejects patches that would break item invariants.
func (p Patch[C]) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Category != nil && !(*p.Category).Valid() {
		return ErrUnknownCategory
	}
	if p.Status != nil && !p.Status.Valid() {
		return errors.New("unknown status")
	}
	return nil
}

// Apply returns it with p merged in.
func (p Patch[C]) Apply(it Item[C]) Item[C] {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.ClearAssignee {
		it.AssignedTo = nil
	}
	if p.AssignedTo != nil {
		v := *p.AssignedTo
		it.AssignedTo = &v
	}
	return it
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
