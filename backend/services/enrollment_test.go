package services

import (
	"testing"

	"platform/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_CreatesActiveEnrollment(t *testing.T) {
	f := newFixture(t, 0)
	enrollments := NewEnrollmentService(f.DB)

	other := models.Course{Title: "Logic", Topic: "Philosophy"}
	require.NoError(t, f.DB.Create(&other).Error)

	row, err := enrollments.Enroll(f.User.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, row.Status)
}

func TestEnroll_RepeatReturnsExistingUnchanged(t *testing.T) {
	f := newFixture(t, 0)
	enrollments := NewEnrollmentService(f.DB)

	// The fixture already enrolled the user; flip the status to verify a
	// repeat enroll does not resurrect it.
	require.NoError(t, f.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", f.User.ID, f.Course.ID).
		Update("status", models.EnrollmentSuspended).Error)

	row, err := enrollments.Enroll(f.User.ID, f.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentSuspended, row.Status)

	var count int64
	require.NoError(t, f.DB.Model(&models.Enrollment{}).Where("user_id = ?", f.User.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnroll_UnknownCourse(t *testing.T) {
	f := newFixture(t, 0)
	enrollments := NewEnrollmentService(f.DB)

	_, err := enrollments.Enroll(f.User.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
