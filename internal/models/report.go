package models

import "time"

// FlagRecord is one row of the integrity report: a single flag attached to a
// student and the item (assignment or discussion) it was raised on.
type FlagRecord struct {
	ItemType    string  `json:"item_type"` // "Assignment" or "Discussion"
	StudentName string  `json:"student_name"`
	UserID      int64   `json:"user_id"`
	ItemName    string  `json:"item_name"`
	ItemID      int64   `json:"item_id"`
	Flag        string  `json:"flag"`
	Check       string  `json:"check,omitempty"`
	Evidence    float64 `json:"evidence,omitempty"`
}

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun is the persisted record of one screening pass over a course.
type AnalysisRun struct {
	ID          string     `json:"id"`
	CourseID    int64      `json:"course_id"`
	CourseName  string     `json:"course_name"`
	ProfileKey  string     `json:"profile_key"`
	Status      RunStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Flags        []FlagRecord `json:"flags,omitempty"`
	StudentCount int          `json:"student_count"`
	FlagCount    int          `json:"flag_count"`
}

// StudentSummary aggregates a student's flags for the executive summary.
type StudentSummary struct {
	StudentName string `json:"student_name"`
	UserID      int64  `json:"user_id"`
	FlagCount   int    `json:"flag_count"`
	Priority    string `json:"priority"`
}

// GradeRecord is one graded submission with the rationale for the grade.
type GradeRecord struct {
	StudentName string `json:"student_name"`
	UserID      int64  `json:"user_id"`
	Grade       string `json:"grade"`
	Reason      string `json:"reason"`
}
