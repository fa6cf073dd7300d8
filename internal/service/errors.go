package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRound is returned for rounds other than 1 and 2.
	ErrInvalidRound = errors.New("round must be 1 or 2")
	// ErrInvalidQuestion is returned when a question violates its type invariants.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrPaymentVerification is returned when the payment signature does not match.
	ErrPaymentVerification = errors.New("payment verification failed")
	// ErrTeamNameTaken is returned when registering a duplicate team name.
	ErrTeamNameTaken = errors.New("team name already exists")
	// ErrEmailTaken is returned when a member email is already registered.
	ErrEmailTaken = errors.New("member email already registered")
	// ErrInvalidRegistration is returned when names are empty after sanitization.
	ErrInvalidRegistration = errors.New("team and member names must contain plain text")
	// ErrInvalidCredentials is returned for unknown emails or wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnsupportedImage is returned for uploads that are not images.
	ErrUnsupportedImage = errors.New("question image must be png, jpeg, gif or webp")

	// ErrTeamNotFound is returned when a team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrQuestionNotFound is returned when a question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSubmissionNotFound is returned when a submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrCertificateNotFound is returned for unknown verification ids.
	ErrCertificateNotFound = errors.New("certificate not found or invalid")
	// ErrProtectedTeam is returned when deleting the organizer team.
	ErrProtectedTeam = errors.New("the organizer team cannot be deleted")
	// ErrNoSubmissions is returned when a batch has nothing to rank.
	ErrNoSubmissions = errors.New("no submissions found")

	// ErrDuplicateSubmission is returned when a team submits a round twice.
	ErrDuplicateSubmission = errors.New("you have already submitted for this round")

	// ErrRoundNotFinalized is returned when publishing results before qualification.
	ErrRoundNotFinalized = errors.New("round must be finalized before results are published")

	// ErrRoundLocked is returned when a round has not been deployed.
	ErrRoundLocked = errors.New("round is not live")
	// ErrNotQualified is returned when a team has not qualified for the round.
	ErrNotQualified = errors.New("team has not qualified for this round")
	// ErrCertificatesNotPublished is returned before certificates are generated.
	ErrCertificatesNotPublished = errors.New("certificates have not been published")

	// ErrNotJudgedAnswer is returned when reviewing an objective answer.
	ErrNotJudgedAnswer = errors.New("answer is not a judged code answer")
	// ErrReviewerUnavailable is returned when no AI reviewer is configured.
	ErrReviewerUnavailable = errors.New("ai reviewer is not configured")

	// ErrPersistence wraps data store failures.
	ErrPersistence = errors.New("persistence failure")
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// ValidateRound rejects rounds other than 1 and 2.
func ValidateRound(round int) error {
	if round != 1 && round != 2 {
		return ErrInvalidRound
	}
	return nil
}
