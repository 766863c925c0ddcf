package entity

import (
	"time"
)

// CourseRef is the embedded course selection returned alongside tasks and events.
type CourseRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Task is a study task as stored by the backend. Dates and times are kept in
// the backend's wire format (dueDate "2006-01-02", dueTime "15:04") so that
// round-trips through mutations never reformat them.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CourseID    string     `json:"courseId"`
	DueDate     string     `json:"dueDate"`
	DueTime     string     `json:"dueTime"`
	Completed   bool       `json:"completed"`
	HasReminder bool       `json:"hasReminder"`
	CompletedAt *string    `json:"completedAt"`
	Course      *CourseRef `json:"course"`
}

// DueAt combines DueDate and DueTime into a local wall-clock instant.
// A task without a due time is treated as due at 09:00.
func (t *Task) DueAt() (time.Time, error) {
	due := t.DueTime
	if due == "" {
		due = "09:00"
	}

	return time.ParseInLocation("2006-01-02 15:04", t.DueDate+" "+due, time.Local)
}

// Course groups tasks and events; the task counters are server-computed.
type Course struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
}

// Event is a calendar entry (class, exam, deadline and so on).
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CourseID    string     `json:"courseId"`
	Date        string     `json:"date"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Type        string     `json:"type"`
	Course      *CourseRef `json:"course"`
}

// Notification is a server-side notification record, distinct from the
// device-local reminders the scheduler manages.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}
