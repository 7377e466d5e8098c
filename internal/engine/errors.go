package engine

import "errors"

var ErrNotYourTurn = errors.New("not your turn")
var ErrInvalidRaise = errors.New("invalid raise")
var ErrInsufficientChips = errors.New("insufficient chips")
var ErrNotAuthorized = errors.New("not authorized")
var ErrInsufficientSeats = errors.New("need at least 2 players with chips")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrHandInProgress = errors.New("hand in progress")
var ErrNoHandInProgress = errors.New("no hand in progress")
var ErrCannotCheck = errors.New("cannot check, chips owed")
var ErrInvalidBlinds = errors.New("invalid blinds")
var ErrAlreadySeated = errors.New("already seated")
var ErrTableFull = errors.New("table full")
var ErrInvalidStack = errors.New("invalid starting stack")
var ErrInvalidName = errors.New("invalid display name")
var ErrUnsupportedCommand = errors.New("unsupported command")

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrNotYourTurn, "NotYourTurn"},
	{ErrInvalidRaise, "InvalidRaise"},
	{ErrInsufficientChips, "InsufficientChips"},
	{ErrNotAuthorized, "NotAuthorized"},
	{ErrInsufficientSeats, "InsufficientSeats"},
	{ErrUnknownPlayer, "UnknownPlayer"},
	{ErrHandInProgress, "HandInProgress"},
	{ErrNoHandInProgress, "NoHandInProgress"},
	{ErrCannotCheck, "CannotCheck"},
	{ErrInvalidBlinds, "InvalidBlinds"},
	{ErrAlreadySeated, "AlreadySeated"},
	{ErrTableFull, "TableFull"},
	{ErrInvalidStack, "InvalidStack"},
	{ErrInvalidName, "InvalidName"},
	{ErrUnsupportedCommand, "UnsupportedCommand"},
}

// ReasonCode maps an engine error to the code sent in actionRejected.
// Order matters: a raise rejected for chips wraps both ErrInvalidRaise and
// ErrInsufficientChips and reports InvalidRaise.
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "Internal"
}
