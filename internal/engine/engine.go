package engine

// PlayerID is the opaque id the session layer assigns to a seat.
type PlayerID = string

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhasePreFlop   Phase = "preflop"
	PhaseFlop      Phase = "flop"
	PhaseTurn      Phase = "turn"
	PhaseRiver     Phase = "river"
	PhaseShowdown  Phase = "showdown"
	PhaseHandEnded Phase = "hand_ended"
)

type Seat struct {
	ID   PlayerID
	Name string
}

type Blinds struct {
	Small int64
	Big   int64
}

type Rules struct {
	MaxSeats int
}

// State is one table. Seats is the seating order; DealerIndex and TurnIndex
// index into it. Everything from StreetBets to board is scoped to one hand and
// reset by StartHand.
type State struct {
	Seats       []Seat
	DealerIndex int
	TurnIndex   int
	HostID      PlayerID
	Blinds      Blinds
	Rules       Rules
	Stacks      map[PlayerID]int64
	HandNumber  int

	Phase         Phase
	StreetBets    map[PlayerID]int64
	HandBets      map[PlayerID]int64
	Folded        map[PlayerID]bool
	AllIn         map[PlayerID]bool
	Acted         map[PlayerID]bool // acted since the last full raise
	Leaving       map[PlayerID]bool // removed when the hand ends
	HoleCards     map[PlayerID][2]Card
	Community     []Card
	Pot           int64
	CurrentBet    int64
	LastRaiseSize int64

	board [5]Card // dealt face down at StartHand, revealed into Community
}

type CommandType string

const (
	CmdJoin      CommandType = "Join"
	CmdLeave     CommandType = "Leave"
	CmdSetBlinds CommandType = "SetBlinds"
	CmdStartHand CommandType = "StartHand"
	CmdRaise     CommandType = "Raise"
	CmdCall      CommandType = "Call"
	CmdCheck     CommandType = "Check"
	CmdFold      CommandType = "Fold"
	CmdAllIn     CommandType = "AllIn"
	CmdTimeout   CommandType = "Timeout"
)

/*
	CmdJoin      -> EvtSeatListChanged
	CmdLeave     -> EvtSeatListChanged, or mid-hand EvtSeatFolded -> (the same settling as CmdFold)
	CmdSetBlinds -> EvtSeatListChanged
	CmdStartHand -> EvtHandStarted -> EvtBetsChanged
	CmdRaise/CmdCall/CmdAllIn -> EvtBetsChanged -> EvtTurnAdvanced | street close
	CmdCheck     -> EvtTurnAdvanced | street close
	CmdFold      -> EvtSeatFolded -> EvtTurnAdvanced | street close | EvtHandEnded
	street close -> EvtBetsChanged -> EvtStreetAdvanced (one per street on a runout) -> [EvtHandEnded]
	CmdTimeout   -> CmdCheck when nothing is owed, CmdFold otherwise
*/

type Command struct {
	Type        CommandType
	PlayerID    PlayerID
	DisplayName string
	Amount      int64 // Join: starting stack, Raise: total bet for the street
	SmallBlind  int64
	BigBlind    int64
}

type EventType string

const (
	EvtSeatListChanged EventType = "seatListChanged"
	EvtHandStarted     EventType = "handStarted"
	EvtBetsChanged     EventType = "betsChanged"
	EvtStreetAdvanced  EventType = "streetAdvanced"
	EvtSeatFolded      EventType = "seatFolded"
	EvtTurnAdvanced    EventType = "turnAdvanced"
	EvtHandEnded       EventType = "handEnded"
	EvtActionRejected  EventType = "actionRejected"
)

// Payout is one seat's winnings. Hand is empty when the pot was won uncontested.
type Payout struct {
	PlayerID PlayerID
	Amount   int64
	Hand     string
}

// Event is a state delta. Which fields are set depends on Type.
type Event struct {
	Type        EventType
	PlayerID    PlayerID
	Seats       []Seat
	DealerIndex int
	TurnIndex   int
	HostID      PlayerID
	Blinds      Blinds
	Stacks      map[PlayerID]int64
	StreetBets  map[PlayerID]int64
	CurrentBet  int64
	Pot         int64
	HoleCards   map[PlayerID][2]Card
	Community   []Card
	Phase       Phase
	Winners     []Payout
	Reason      string
}

// Apply runs cmd against a copy of s. On error the original state is returned
// untouched and no events are produced.
func Apply(s State, cmd Command) ([]Event, State, error) {
	next := s.Clone()

	var events []Event
	var err error
	switch cmd.Type {
	case CmdJoin:
		events, err = next.join(cmd.PlayerID, cmd.DisplayName, cmd.Amount)
	case CmdLeave:
		events, err = next.leave(cmd.PlayerID)
	case CmdSetBlinds:
		events, err = next.setBlinds(cmd.PlayerID, cmd.SmallBlind, cmd.BigBlind)
	case CmdStartHand:
		events, err = next.startHand(cmd.PlayerID)
	case CmdRaise:
		events, err = next.raise(cmd.PlayerID, cmd.Amount)
	case CmdCall:
		events, err = next.call(cmd.PlayerID)
	case CmdCheck:
		events, err = next.check(cmd.PlayerID)
	case CmdFold:
		events, err = next.fold(cmd.PlayerID)
	case CmdAllIn:
		events, err = next.allIn(cmd.PlayerID)
	case CmdTimeout:
		events, err = next.timeout(cmd.PlayerID)
	default:
		return nil, s, ErrUnsupportedCommand
	}
	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}

// Rejected builds the actionRejected event sent back to the player only.
func Rejected(playerID PlayerID, err error) Event {
	return Event{Type: EvtActionRejected, PlayerID: playerID, Reason: ReasonCode(err)}
}
