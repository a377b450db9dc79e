package validator

import (
	"testing"

	"github.com/classbridge/lms-service/internal/models"
)

func TestValidateEnrollmentTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		current models.EnrollmentStatus
		next    models.EnrollmentStatus
		wantOK  bool
	}{
		{"pending to enrolled", models.EnrollmentPending, models.EnrollmentEnrolled, true},
		{"enrolled to completed", models.EnrollmentEnrolled, models.EnrollmentCompleted, true},
		{"pending to completed skips approval", models.EnrollmentPending, models.EnrollmentCompleted, false},
		{"completed is terminal", models.EnrollmentCompleted, models.EnrollmentEnrolled, false},
		{"enrolled back to pending", models.EnrollmentEnrolled, models.EnrollmentPending, false},
		{"not-enrolled is never stored", models.EnrollmentNotEnrolled, models.EnrollmentPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateEnrollmentTransition(tt.current, tt.next)
			if tt.wantOK && errs.HasErrors() {
				t.Errorf("expected transition allowed, got %v", errs)
			}
			if !tt.wantOK && !errs.HasErrors() {
				t.Error("expected transition rejected")
			}
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	bv := NewBusinessValidator()

	req := &SubmitWorkRequest{AssignmentID: 1}

	if errs := bv.ValidateSubmission(req, models.EnrollmentEnrolled); errs.HasErrors() {
		t.Errorf("enrolled student should be able to submit, got %v", errs)
	}

	for _, status := range []models.EnrollmentStatus{
		models.EnrollmentNotEnrolled,
		models.EnrollmentPending,
		models.EnrollmentCompleted,
	} {
		if errs := bv.ValidateSubmission(req, status); !errs.HasErrors() {
			t.Errorf("status %s should not be able to submit", status)
		}
	}
}

func TestValidate_StructTags(t *testing.T) {
	v := New()

	errs := v.Validate(&CourseCreateRequest{Name: ""})
	if !errs.HasErrors() {
		t.Fatal("expected validation failure for empty course name")
	}
	if errs[0].Field != "Name" {
		t.Errorf("expected failure on Name, got %s", errs[0].Field)
	}

	if errs := v.Validate(&CourseCreateRequest{Name: "Algebra I"}); errs.HasErrors() {
		t.Errorf("expected valid request, got %v", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "is required"},
		{Field: "course_id", Message: "is required"},
	}

	want := "name: is required; course_id: is required"
	if got := errs.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty error list should render empty string")
	}
}
