package engine

import (
	"maps"
	"math"
	"slices"
)

const DefaultMaxSeats = 10

// MaxStack is the largest starting stack a seat may bring. A full table of
// them still sums within int64.
const MaxStack = math.MaxInt64 / DefaultMaxSeats

func NewEmptyState() State {
	return NewState(Blinds{Small: 10, Big: 20}, Rules{MaxSeats: DefaultMaxSeats})
}

func NewState(blinds Blinds, rules Rules) State {
	if rules.MaxSeats <= 0 || rules.MaxSeats > DefaultMaxSeats {
		rules.MaxSeats = DefaultMaxSeats
	}
	s := State{
		Blinds: blinds,
		Rules:  rules,
		Stacks: map[PlayerID]int64{},
		Phase:  PhaseWaiting,
	}
	s.resetHand()
	return s
}

// resetHand clears everything scoped to one hand.
func (s *State) resetHand() {
	s.StreetBets = map[PlayerID]int64{}
	s.HandBets = map[PlayerID]int64{}
	s.Folded = map[PlayerID]bool{}
	s.AllIn = map[PlayerID]bool{}
	s.Acted = map[PlayerID]bool{}
	s.Leaving = map[PlayerID]bool{}
	s.HoleCards = map[PlayerID][2]Card{}
	s.Community = nil
	s.Pot = 0
	s.CurrentBet = 0
	s.LastRaiseSize = s.Blinds.Big
	s.board = [5]Card{}
}

// Clone deep copies s so a failed command can't leak partial writes.
func (s State) Clone() State {
	c := s
	c.Seats = slices.Clone(s.Seats)
	c.Stacks = cloneMap(s.Stacks)
	c.StreetBets = cloneMap(s.StreetBets)
	c.HandBets = cloneMap(s.HandBets)
	c.Folded = cloneMap(s.Folded)
	c.AllIn = cloneMap(s.AllIn)
	c.Acted = cloneMap(s.Acted)
	c.Leaving = cloneMap(s.Leaving)
	c.HoleCards = cloneMap(s.HoleCards)
	c.Community = slices.Clone(s.Community)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}

// HandLive reports whether a hand is accepting betting actions.
func (s State) HandLive() bool {
	switch s.Phase {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// ChipsInPlay is stacks plus live street bets plus the pot; a hand never
// changes it.
func (s State) ChipsInPlay() int64 {
	var total int64
	for _, v := range s.Stacks {
		total += v
	}
	for _, v := range s.StreetBets {
		total += v
	}
	return total + s.Pot
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func (s *State) seatListEvent() Event {
	return Event{
		Type:        EvtSeatListChanged,
		Seats:       slices.Clone(s.Seats),
		DealerIndex: s.DealerIndex,
		TurnIndex:   s.TurnIndex,
		Stacks:      cloneMap(s.Stacks),
		HostID:      s.HostID,
		Blinds:      s.Blinds,
	}
}

func (s *State) betsEvent() Event {
	return Event{
		Type:       EvtBetsChanged,
		StreetBets: cloneMap(s.StreetBets),
		Stacks:     cloneMap(s.Stacks),
		TurnIndex:  s.TurnIndex,
		CurrentBet: s.CurrentBet,
		Pot:        s.Pot,
	}
}

func (s *State) turnEvent() Event {
	return Event{Type: EvtTurnAdvanced, TurnIndex: s.TurnIndex}
}

func (s *State) streetEvent() Event {
	return Event{
		Type:      EvtStreetAdvanced,
		Community: slices.Clone(s.Community),
		Phase:     s.Phase,
		TurnIndex: s.TurnIndex,
	}
}
