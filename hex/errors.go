package hex

import "errors"

// Errors returned by session operations. All of them are caller-contract
// violations; none is transient.
var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrEmptyHistoryUndo = errors.New("nothing to undo")
	ErrInvalidSwapState = errors.New("swap not allowed")
	ErrNoBot            = errors.New("mode requires a bot")
	ErrBotFailed        = errors.New("bot failed to respond")
	ErrUnknownMode      = errors.New("unknown mode")
)
