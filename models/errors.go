package models

// InvalidParametersError is the recoverable domain error class. Its message
// is safe to forward to clients; any other error is masked at the dispatch
// boundary.
type InvalidParametersError struct {
	Message string
}

func (e *InvalidParametersError) Error() string {
	return e.Message
}

// NewInvalidParameters wraps a client-visible failure message.
func NewInvalidParameters(message string) error {
	return &InvalidParametersError{Message: message}
}

// Canonical domain failure messages.
const (
	MessageUnknownCommand    = "unknown command type"
	MessageGameFull          = "game full"
	MessageAlreadyInGame     = "player already in game"
	MessageGameNotInProgress = "game not in progress"
	MessageGameNotStartable  = "game not startable"
	MessageGameIDMismatch    = "game id mismatch"
	MessageMoveOutOfTurn     = "move out of turn"
	MessageSpaceOccupied     = "space occupied"
	MessageInvalidMove       = "invalid move"
	MessagePlayerNotInGame   = "player not in game"
	MessageNotAnOccupant     = "player not an occupant"
	MessageAlreadyOccupant   = "player already an occupant"
	MessageOutsideBounds     = "location outside area bounds"
	MessageMissingMove       = "missing move"
)
