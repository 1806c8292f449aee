package model

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Category string

const (
	CategoryNone     Category = ""
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryNone, CategoryWork, CategoryPersonal:
		return true
	}
	return false
}

// Task is the in-memory representation held by the task store.
// Handle is the remote store key; ID is positional and only valid until the next reload.
type Task struct {
	Handle      string   `json:"handle"`
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Category    Category `json:"category,omitempty"`
}

// Record is what the remote store persists for a task.
type Record struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Category    Category `json:"category,omitempty"`
}

// Fields is a partial update; nil fields are left untouched.
type Fields struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Category    *Category `json:"category,omitempty"`
}

func (f Fields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.DueDate == nil &&
		f.Status == nil && f.Priority == nil && f.Category == nil
}

// Apply returns r with the non-nil fields of f merged in.
func (f Fields) Apply(r Record) Record {
	if f.Title != nil {
		r.Title = *f.Title
	}
	if f.Description != nil {
		r.Description = *f.Description
	}
	if f.DueDate != nil {
		r.DueDate = *f.DueDate
	}
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.Priority != nil {
		r.Priority = *f.Priority
	}
	if f.Category != nil {
		r.Category = *f.Category
	}
	return r
}

func (t Task) Record() Record {
	return Record{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
	}
}

// Identity is the signed-in user as supplied by the session collaborator.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl"`
}
