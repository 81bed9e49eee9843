package models

import "errors"

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo     NoticeLevel = "info"
	NoticeProgress NoticeLevel = "progress"
	NoticeSuccess  NoticeLevel = "success"
	NoticeError    NoticeLevel = "error"
)

var (
	// ErrUnauthorized marks a submission rejected by the authorization step.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTrackingLost marks a background task whose status could no longer be read.
	// The task itself may still finish.
	ErrTrackingLost = errors.New("lost track of background task")
)

// Confirmation describes a yes/no question put to the operator.
type Confirmation struct {
	Title        string
	Description  string
	ConfirmLabel string
}

// TaskMessages are the notices shown while a background task is tracked.
type TaskMessages struct {
	Start   string
	Success string
	Fail    string
	// Lost is shown when tracking stopped before the task reported an outcome.
	Lost string
}

// CompletionMessages are shown for a bulk completion request.
var CompletionMessages = TaskMessages{
	Start: "Completing certifications is in progress. Once it is done you will get a notification. " +
		"You can continue working with the app.",
	Success: "Certifications are completed successfully.",
	Fail:    "Failed to complete certifications in bulk. Please refresh the page and start bulk complete again.",
	Lost:    "Stopped tracking the bulk completion. It may still finish, check the task status later.",
}

// SaveMessages are shown for a save-answers request.
var SaveMessages = TaskMessages{
	Start: "Saving answers is in progress. Once it is done you will get a notification. " +
		"You can continue working with the app.",
	Success: "Answers are saved successfully.",
	Fail:    "Failed to save answers in bulk. Please refresh the page and try again.",
	Lost:    "Stopped tracking the answers save. It may still finish, check the task status later.",
}

// SearchResult is the decoded answer of the bulk search call.
type SearchResult struct {
	Rows    []Row
	Headers []AttributeHeader
}
