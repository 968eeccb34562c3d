package standingsservice

import "errors"

// Domain errors for the standings service.
// These are returned in the Failure branch of the result: the event metadata is
// unusable and no standings are produced.
var (
	// ErrUnknownEventType indicates the event type is not singles, teams or casual.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrInvalidRounds indicates a team event declared fewer than one round.
	ErrInvalidRounds = errors.New("team event needs at least one round")

	// ErrAlreadyRanked indicates an input record already carries a team placing.
	ErrAlreadyRanked = errors.New("army already has a team placing")
)
