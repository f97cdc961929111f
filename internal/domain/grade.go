package domain

// ReviewGrade represents the recall quality reported for a card review.
type ReviewGrade string

// Possible review grade values, from complete failure to effortless recall.
const (
	ReviewGradeForgot ReviewGrade = "forgot"
	ReviewGradeHard   ReviewGrade = "hard"
	ReviewGradeGood   ReviewGrade = "good"
	ReviewGradeEasy   ReviewGrade = "easy"
)

// IsValid reports whether the grade is one of the defined values.
func (g ReviewGrade) IsValid() bool {
	switch g {
	case ReviewGradeForgot, ReviewGradeHard, ReviewGradeGood, ReviewGradeEasy:
		return true
	default:
		return false
	}
}

// IsCorrect reports whether the grade counts as a successful recall.
// Only "forgot" counts as a failure; hard, good, and easy are all
// successful recalls of varying effort.
func (g ReviewGrade) IsCorrect() bool {
	return g != ReviewGradeForgot && g.IsValid()
}

// SelfAssessment is the coarse three-option self-rating the mobile client
// presents after revealing a card.
type SelfAssessment string

// Self-assessment options shown in the review UI.
const (
	SelfAssessmentInstantlyGotIt SelfAssessment = "instantly_got_it"
	SelfAssessmentHadToThink     SelfAssessment = "had_to_think"
	SelfAssessmentForgot         SelfAssessment = "forgot"
)

// Grade maps a three-option self-assessment onto the four-grade scheme
// used by the scheduler:
//
//	instantly_got_it → easy
//	had_to_think     → hard
//	forgot           → forgot
//
// The "good" grade has no three-option equivalent and is only reachable
// through the four-grade API.
func (a SelfAssessment) Grade() (ReviewGrade, error) {
	switch a {
	case SelfAssessmentInstantlyGotIt:
		return ReviewGradeEasy, nil
	case SelfAssessmentHadToThink:
		return ReviewGradeHard, nil
	case SelfAssessmentForgot:
		return ReviewGradeForgot, nil
	default:
		return "", ErrInvalidSelfAssessment
	}
}
