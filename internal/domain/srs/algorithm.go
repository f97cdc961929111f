package srs

import (
	"math"
	"time"

	"github.com/vocably/srs-api/internal/domain"
)

// nextEaseFactor determines the new ease factor after a review.
//
// The ease factor represents the card's difficulty: higher values mean the
// card is easier and intervals grow faster. Forgot and hard grades shrink
// it, good leaves it unchanged, easy grows it. The result is always clamped
// to the configured floor (and to the cap when one is configured), which
// prevents a long run of failures from shrinking intervals without bound.
func nextEaseFactor(current float64, grade domain.ReviewGrade, params *Params) float64 {
	next := current

	switch grade {
	case domain.ReviewGradeForgot:
		next = current - params.ForgotEasePenalty
	case domain.ReviewGradeHard:
		next = current - params.HardEasePenalty
	case domain.ReviewGradeGood:
		// Unchanged
	case domain.ReviewGradeEasy:
		next = current + params.EasyEaseBonus
	}

	if next < params.MinEaseFactor {
		next = params.MinEaseFactor
	}
	if params.MaxEaseFactor > 0 && next > params.MaxEaseFactor {
		next = params.MaxEaseFactor
	}

	return next
}

// nextIntervalDays determines the new interval after a review.
//
// The growth multiplier is applied to the ease factor the card carried
// into the review, before any ease adjustment for this grade:
//
//   - forgot: reset to the lapse interval (one day by default)
//   - hard:   interval × max(ease − penalty, 1.0), so hard answers still
//     move the card forward, just slowly
//   - good:   interval × ease, except the first consecutive success
//     (including the first after a lapse), which always reviews again
//     tomorrow
//   - easy:   interval × ease × bonus, with a fixed short interval for a
//     card that has never been scheduled
//
// newRepetitions is the consecutive-correct count after this review has
// been counted. A successful review never yields an interval below one day.
func nextIntervalDays(
	currentInterval int,
	newRepetitions int,
	easeFactor float64,
	grade domain.ReviewGrade,
	params *Params,
) int {
	if grade == domain.ReviewGradeForgot {
		return params.LapseIntervalDays
	}

	var next int
	switch grade {
	case domain.ReviewGradeHard:
		modifier := easeFactor - params.HardIntervalEasePenalty
		if modifier < 1.0 {
			modifier = 1.0
		}
		next = int(math.Round(float64(currentInterval) * modifier))
	case domain.ReviewGradeGood:
		if newRepetitions <= 1 {
			return params.FirstReviewGoodDays
		}
		next = int(math.Round(float64(currentInterval) * easeFactor))
	case domain.ReviewGradeEasy:
		if currentInterval == 0 {
			return params.FirstReviewEasyDays
		}
		next = int(math.Round(float64(currentInterval) * easeFactor * params.EasyIntervalBonus))
	}

	if next < 1 {
		next = 1
	}

	return next
}

// nextState determines the card's learning state after a review.
//
// A forgot grade always returns the card to learning, never to new. A
// successful grade graduates the card to review once it has accumulated
// enough consecutive correct answers and a long enough interval; until
// then it stays in learning.
func nextState(repetitions, intervalDays int, grade domain.ReviewGrade, params *Params) domain.CardState {
	if grade == domain.ReviewGradeForgot {
		return domain.CardStateLearning
	}

	if repetitions >= params.GraduationRepetitions &&
		intervalDays >= params.GraduationIntervalDays {
		return domain.CardStateReview
	}

	return domain.CardStateLearning
}

// schedule computes a card's full next scheduling state for a grade at the
// given time. It returns a new card and never mutates its input; the due
// date is always derived as the review time plus the new interval.
func schedule(card *domain.Card, grade domain.ReviewGrade, now time.Time, params *Params) *domain.Card {
	next := card.Clone()

	if grade == domain.ReviewGradeForgot {
		next.Repetitions = 0
	} else {
		next.Repetitions = card.Repetitions + 1
	}

	next.IntervalDays = nextIntervalDays(card.IntervalDays, next.Repetitions, card.EaseFactor, grade, params)
	next.EaseFactor = nextEaseFactor(card.EaseFactor, grade, params)
	next.State = nextState(next.Repetitions, next.IntervalDays, grade, params)
	next.LastReviewedAt = now
	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	next.UpdatedAt = now

	return next
}
