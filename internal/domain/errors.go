package domain

import "errors"

var (
	// ErrRoadmapNotFound is returned when a roadmap id is unknown to the store.
	ErrRoadmapNotFound = errors.New("roadmap not found")
	// ErrWeekNotFound indicates a week id that does not belong to the roadmap.
	ErrWeekNotFound = errors.New("week not found")
	// ErrTopicOutOfRange indicates a topic index outside the week's topics.
	ErrTopicOutOfRange = errors.New("topic index out of range")
	// ErrUpdateInProgress is returned when a completion toggle is already outstanding.
	ErrUpdateInProgress = errors.New("progress update already in progress")
	// ErrContentNotFound indicates the generator has nothing for a subject.
	ErrContentNotFound = errors.New("no content available")
	// ErrQuizSubmitted is returned when answering or submitting an already submitted quiz.
	ErrQuizSubmitted = errors.New("quiz already submitted")
	// ErrDeletePending is returned when a delete is requested while another is pending or committing.
	ErrDeletePending = errors.New("another delete is pending")
	// ErrNoPendingDelete is returned when confirming or cancelling without a pending request.
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
	// ErrMissingTarget is returned when a single-item delete names no target id.
	ErrMissingTarget = errors.New("delete target id is required")
	// ErrUnknownKind indicates an unsupported delete target kind.
	ErrUnknownKind = errors.New("unknown target kind")
	// ErrViewNotFound is returned when a view id has no open workspace.
	ErrViewNotFound = errors.New("view not found")
	// ErrDeleteFailed wraps storage failures surfaced to the user after a confirm.
	ErrDeleteFailed = errors.New("delete failed")
)
