package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Equal(t, 0.0, params.MaxEaseFactor, "ease growth is uncapped by default")
	assert.Equal(t, 1, params.LapseIntervalDays)
	assert.Equal(t, 1, params.FirstReviewGoodDays)
	assert.Equal(t, 2, params.FirstReviewEasyDays)
	assert.Equal(t, 2, params.GraduationRepetitions)
	assert.Equal(t, 7, params.GraduationIntervalDays)
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()
	params := NewParams(ParamsConfig{
		MinEaseFactor:          1.5,
		GraduationIntervalDays: 14,
	})

	assert.Equal(t, 1.5, params.MinEaseFactor)
	assert.Equal(t, 14, params.GraduationIntervalDays)

	// Zero-valued fields keep their defaults.
	assert.Equal(t, 0.20, params.ForgotEasePenalty)
	assert.Equal(t, 2, params.GraduationRepetitions)
}
