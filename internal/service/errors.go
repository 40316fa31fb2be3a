package service

import "errors"

// Re-entrance guards. Each pane admits one outstanding call; the view
// disables the trigger, these errors back that up server-side.
var (
	ErrSubmissionInFlight = errors.New("an ingestion is already in progress")
	ErrQuestionInFlight   = errors.New("a question is already in flight")
)
