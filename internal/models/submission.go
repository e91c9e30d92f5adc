package models

// Attachment is a file attached to a Canvas submission. Canvadoc fields are
// only populated for documents that went through Canvas's annotation preview.
type Attachment struct {
	ID                 int64  `json:"id"`
	Filename           string `json:"filename"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content-type"`
	URL                string `json:"url"`
	CanvadocDocumentID string `json:"canvadoc_document_id,omitempty"`
	PreviewURL         string `json:"preview_url,omitempty"`
}

type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Submission struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	User           *User        `json:"user,omitempty"`
	Body           string       `json:"body"`
	URL            string       `json:"url,omitempty"`
	WorkflowState  string       `json:"workflow_state"`
	SubmissionType string       `json:"submission_type"`
	Grade          string       `json:"grade,omitempty"`
	Score          *float64     `json:"score,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// UserName returns the display name for flag messages, falling back to the
// numeric ID when the roster entry was not included.
func (s Submission) UserName() string {
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	return ""
}

type Enrollment struct {
	UserID int64 `json:"user_id"`
	User   User  `json:"user"`
}

type Assignment struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	GradingType    string  `json:"grading_type,omitempty"`
	PointsPossible float64 `json:"points_possible,omitempty"`
	DueAt          string  `json:"due_at,omitempty"`
}

// DiscussionEntry is one post in a discussion topic. Replies nest recursively
// in the Canvas /view payload and are flattened before analysis.
type DiscussionEntry struct {
	ID      int64             `json:"id"`
	UserID  int64             `json:"user_id"`
	Message string            `json:"message"`
	Replies []DiscussionEntry `json:"replies,omitempty"`
}

type DiscussionTopic struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Assignment *Assignment `json:"assignment,omitempty"`
}
