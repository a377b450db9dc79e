package events

import (
	"context"
	"time"
)

// Event type constants for every domain mutation the service announces.
// Downstream consumers (the realtime hub, notification pipelines) key off
// these strings, so they are part of the wire contract.
const (
	EnrollmentRequested = "enrollment.requested"
	EnrollmentApproved  = "enrollment.approved"
	EnrollmentCompleted = "enrollment.completed"
	EnrollmentAssigned  = "enrollment.assigned"

	CourseCreated = "course.created"
	CourseUpdated = "course.updated"
	CourseDeleted = "course.deleted"

	AssignmentCreated = "assignment.created"
	AssignmentUpdated = "assignment.updated"
	AssignmentDeleted = "assignment.deleted"

	SubmissionReceived = "submission.received"
	SubmissionGraded   = "submission.graded"
	SubmissionRevision = "submission.revision_requested"

	ScheduleChanged = "schedule.changed"
	ContentChanged  = "content.changed"
)

// Event is the envelope every published message shares.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventPublisher publishes domain events to the configured transport.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// EventSource identifies this service in every published envelope.
const EventSource = "lms-service"

// EventVersion is the envelope schema version.
const EventVersion = "1.0"
