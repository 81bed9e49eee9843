package models

import "encoding/json"

// CompletionRequest is the body of the bulk complete and save-answers calls.
type CompletionRequest struct {
	AssessmentsIDs []int64            `json:"assessments_ids"`
	Attributes     []AssessmentValues `json:"attributes"`
}

// AssessmentRef identifies an assessment in the completion payload.
type AssessmentRef struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// AssessmentValues groups the edited attribute values of one assessment.
type AssessmentValues struct {
	Assessment AssessmentRef    `json:"assessment"`
	Values     []AttributeValue `json:"values"`
}

// AttributeValue is one edited attribute value, already coerced for the backend.
type AttributeValue struct {
	Value        interface{}   `json:"value"`
	Title        string        `json:"title"`
	Type         AttributeType `json:"type"`
	DefinitionID int64         `json:"definition_id"`
	ID           *int64        `json:"id"`
	Extra        Extra         `json:"extra"`
}

// ExtraFile is an evidence file reference as the backend expects it.
type ExtraFile struct {
	Title          string `json:"title"`
	SourceGdriveID string `json:"source_gdrive_id"`
}

// ExtraComment is the comment attached to a dropdown answer.
type ExtraComment struct {
	Description string    `json:"description"`
	ModifiedBy  PersonRef `json:"modified_by"`
}

// Extra carries the supplemental info of a value. The zero Extra encodes as {}.
type Extra struct {
	URLs     []string
	Files    []ExtraFile
	Comment  *ExtraComment
	attached bool
}

// NewExtra builds the extra block from attachments. Nil attachments give an empty Extra.
func NewExtra(a *Attachments, modifiedBy int64) Extra {
	if a == nil {
		return Extra{}
	}
	e := Extra{
		URLs:     append([]string{}, a.URLs...),
		Files:    make([]ExtraFile, 0, len(a.Files)),
		attached: true,
	}
	for _, f := range a.Files {
		e.Files = append(e.Files, ExtraFile{Title: f.Title, SourceGdriveID: f.SourceID})
	}
	if a.Comment != nil && *a.Comment != "" {
		e.Comment = &ExtraComment{
			Description: *a.Comment,
			ModifiedBy:  PersonRef{Type: "Person", ID: modifiedBy},
		}
	}
	return e
}

// IsEmpty reports whether the value had no attachments.
func (e Extra) IsEmpty() bool {
	return !e.attached
}

// MarshalJSON encodes {} for values without attachments and an empty string
// comment when none was supplied.
func (e Extra) MarshalJSON() ([]byte, error) {
	if !e.attached {
		return []byte("{}"), nil
	}
	var comment interface{} = ""
	if e.Comment != nil {
		comment = e.Comment
	}
	return json.Marshal(struct {
		URLs    []string    `json:"urls"`
		Files   []ExtraFile `json:"files"`
		Comment interface{} `json:"comment"`
	}{
		URLs:    e.URLs,
		Files:   e.Files,
		Comment: comment,
	})
}

// TaskResponse is returned by calls that start a background task.
// ID is zero when the backend did not start one.
type TaskResponse struct {
	ID int64 `json:"id"`
}

// Background task status values reported by the backend.
const (
	TaskStatusPending = "Pending"
	TaskStatusRunning = "Running"
	TaskStatusSuccess = "Success"
	TaskStatusFailure = "Failure"
)

// BackgroundTask is the status document of a background task.
type BackgroundTask struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// IsFinished reports whether the task reached a terminal status.
func (t BackgroundTask) IsFinished() bool {
	return t.Status == TaskStatusSuccess || t.Status == TaskStatusFailure
}
