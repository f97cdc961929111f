package srs

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64 // Floor; the ease factor never drops below this
	MaxEaseFactor float64 // Cap on ease growth; 0 disables the cap

	// Ease factor adjustments per grade
	ForgotEasePenalty float64 // Subtracted on a forgot grade
	HardEasePenalty   float64 // Subtracted on a hard grade
	EasyEaseBonus     float64 // Added on an easy grade

	// Interval growth
	HardIntervalEasePenalty float64 // Subtracted from the ease factor for hard growth (never below 1.0)
	EasyIntervalBonus       float64 // Extra multiplier applied on an easy grade

	// Special case handling
	LapseIntervalDays   int // Interval after a forgot grade
	FirstReviewGoodDays int // Interval after the first successful good grade
	FirstReviewEasyDays int // Interval after the first successful easy grade

	// Graduation thresholds: a card enters the review state once both hold
	GraduationRepetitions  int
	GraduationIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero-valued fields keep their defaults.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	ForgotEasePenalty float64
	HardEasePenalty   float64
	EasyEaseBonus     float64

	HardIntervalEasePenalty float64
	EasyIntervalBonus       float64

	LapseIntervalDays   int
	FirstReviewGoodDays int
	FirstReviewEasyDays int

	GraduationRepetitions  int
	GraduationIntervalDays int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 0, // Uncapped

		ForgotEasePenalty: 0.20,
		HardEasePenalty:   0.05,
		EasyEaseBonus:     0.15,

		HardIntervalEasePenalty: 0.15,
		EasyIntervalBonus:       1.3,

		LapseIntervalDays:   1,
		FirstReviewGoodDays: 1,
		FirstReviewEasyDays: 2,

		GraduationRepetitions:  2,
		GraduationIntervalDays: 7,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Only fields set to non-zero values override the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	if config.ForgotEasePenalty > 0 {
		params.ForgotEasePenalty = config.ForgotEasePenalty
	}
	if config.HardEasePenalty > 0 {
		params.HardEasePenalty = config.HardEasePenalty
	}
	if config.EasyEaseBonus > 0 {
		params.EasyEaseBonus = config.EasyEaseBonus
	}

	if config.HardIntervalEasePenalty > 0 {
		params.HardIntervalEasePenalty = config.HardIntervalEasePenalty
	}
	if config.EasyIntervalBonus > 0 {
		params.EasyIntervalBonus = config.EasyIntervalBonus
	}

	if config.LapseIntervalDays > 0 {
		params.LapseIntervalDays = config.LapseIntervalDays
	}
	if config.FirstReviewGoodDays > 0 {
		params.FirstReviewGoodDays = config.FirstReviewGoodDays
	}
	if config.FirstReviewEasyDays > 0 {
		params.FirstReviewEasyDays = config.FirstReviewEasyDays
	}

	if config.GraduationRepetitions > 0 {
		params.GraduationRepetitions = config.GraduationRepetitions
	}
	if config.GraduationIntervalDays > 0 {
		params.GraduationIntervalDays = config.GraduationIntervalDays
	}

	return params
}
