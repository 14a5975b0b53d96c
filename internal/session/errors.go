package session

import "errors"

// Sentinel errors returned by Session.
var (
	ErrRequestInFlight = errors.New("request already in flight")
	ErrWrongStage      = errors.New("action not available in this stage")
	ErrNoSuchRecipe    = errors.New("no such recipe")
	ErrInvalidResponse = errors.New("invalid response format from server")
	ErrSuperseded      = errors.New("recipe list changed while the request was running")
)

// ValidationError reports input the session refuses to act on. The
// session stage is unchanged when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
