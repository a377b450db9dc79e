package validator

import (
	"fmt"

	"github.com/classbridge/lms-service/internal/models"
)

// BusinessValidator handles business rule validation beyond struct tags.
type BusinessValidator struct {
	validator *Validator
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validator: New()}
}

// allowedEnrollmentTransitions is the approval state machine. A request row
// starts at pending; there is no stored not-enrolled state, absence of a row
// is what reads back as not-enrolled.
var allowedEnrollmentTransitions = map[models.EnrollmentStatus][]models.EnrollmentStatus{
	models.EnrollmentPending:  {models.EnrollmentEnrolled},
	models.EnrollmentEnrolled: {models.EnrollmentCompleted},
}

// ValidateEnrollmentTransition checks one status move against the state machine.
func (bv *BusinessValidator) ValidateEnrollmentTransition(current, next models.EnrollmentStatus) ValidationErrors {
	for _, allowed := range allowedEnrollmentTransitions[current] {
		if allowed == next {
			return nil
		}
	}

	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// ValidateEnrollmentRequest validates a student's join request.
func (bv *BusinessValidator) ValidateEnrollmentRequest(req *EnrollmentRequest) ValidationErrors {
	return bv.validator.Validate(req)
}

// ValidateDirectAssign validates an admin placing a student directly.
func (bv *BusinessValidator) ValidateDirectAssign(req *DirectAssignRequest) ValidationErrors {
	return bv.validator.Validate(req)
}

// ValidateSubmission checks a submit request plus its business rules: work
// can only target an assignment in a course the student is enrolled in.
func (bv *BusinessValidator) ValidateSubmission(req *SubmitWorkRequest, enrollmentStatus models.EnrollmentStatus) ValidationErrors {
	errors := bv.validator.Validate(req)

	if enrollmentStatus != models.EnrollmentEnrolled {
		errors = append(errors, ValidationError{
			Field:   "enrollment",
			Message: "student is not enrolled in this course",
			Value:   enrollmentStatus,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateGrading checks that only stored submissions move to graded states.
func (bv *BusinessValidator) ValidateGrading(req *GradeSubmissionRequest, currentStatus models.SubmissionStatus) ValidationErrors {
	errors := bv.validator.Validate(req)

	switch currentStatus {
	case models.SubmissionSubmitted, models.SubmissionNeedsRevision, models.SubmissionGraded, "":
		// Regrading and grading after revision are allowed.
	default:
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("submission in status %s cannot be graded", currentStatus),
			Value:   currentStatus,
			Rule:    "business_logic",
		})
	}

	return errors
}
