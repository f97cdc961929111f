package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewGradeIsValid(t *testing.T) {
	t.Parallel()

	for _, grade := range []ReviewGrade{ReviewGradeForgot, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy} {
		assert.True(t, grade.IsValid(), "grade %q should be valid", grade)
	}

	assert.False(t, ReviewGrade("").IsValid())
	assert.False(t, ReviewGrade("again").IsValid())
}

func TestReviewGradeIsCorrect(t *testing.T) {
	t.Parallel()

	assert.False(t, ReviewGradeForgot.IsCorrect())
	assert.True(t, ReviewGradeHard.IsCorrect())
	assert.True(t, ReviewGradeGood.IsCorrect())
	assert.True(t, ReviewGradeEasy.IsCorrect())
	assert.False(t, ReviewGrade("again").IsCorrect())
}

func TestSelfAssessmentGrade(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		assessment SelfAssessment
		want       ReviewGrade
	}{
		{SelfAssessmentInstantlyGotIt, ReviewGradeEasy},
		{SelfAssessmentHadToThink, ReviewGradeHard},
		{SelfAssessmentForgot, ReviewGradeForgot},
	}

	for _, tc := range testCases {
		t.Run(string(tc.assessment), func(t *testing.T) {
			t.Parallel()
			grade, err := tc.assessment.Grade()
			assert.NoError(t, err)
			assert.Equal(t, tc.want, grade)
		})
	}

	t.Run("unknown assessment", func(t *testing.T) {
		t.Parallel()
		_, err := SelfAssessment("nailed_it").Grade()
		assert.ErrorIs(t, err, ErrInvalidSelfAssessment)
	})
}
