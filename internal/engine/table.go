package engine

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxNameRunes = 24

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" || utf8.RuneCountInString(name) > maxNameRunes {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func (s *State) join(id PlayerID, name string, stack int64) ([]Event, error) {
	if s.HandLive() {
		return nil, ErrHandInProgress
	}
	if id == "" {
		return nil, ErrUnknownPlayer
	}
	if s.seated(id) {
		return nil, ErrAlreadySeated
	}
	if len(s.Seats) >= s.Rules.MaxSeats {
		return nil, fmt.Errorf("%w: %d seats", ErrTableFull, s.Rules.MaxSeats)
	}
	if stack <= 0 || stack > MaxStack {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStack, stack)
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	s.Seats = append(s.Seats, Seat{ID: id, Name: name})
	s.Stacks[id] = stack
	if s.HostID == "" {
		s.HostID = id
	}
	return []Event{s.seatListEvent()}, nil
}

// leave folds a seat still holding cards and removes it once the hand is over.
func (s *State) leave(id PlayerID) ([]Event, error) {
	if !s.seated(id) {
		return nil, ErrUnknownPlayer
	}
	if !s.HandLive() {
		s.removeSeat(id)
		return []Event{s.seatListEvent()}, nil
	}

	s.Leaving[id] = true
	if s.Folded[id] {
		return nil, nil
	}
	onTurn := s.CurrentPlayer() == id
	events := []Event{s.foldSeat(id)}
	s.settle(&events, onTurn)
	return events, nil
}

func (s *State) removeSeat(id PlayerID) {
	idx := s.seatIndex(id)
	if idx < 0 {
		panic(fmt.Sprintf("engine: removing unseated player %q", id))
	}
	s.Seats = slices.Delete(s.Seats, idx, idx+1)
	for _, m := range []map[PlayerID]bool{s.Folded, s.AllIn, s.Acted, s.Leaving} {
		delete(m, id)
	}
	delete(s.Stacks, id)
	delete(s.StreetBets, id)
	delete(s.HandBets, id)
	delete(s.HoleCards, id)

	n := len(s.Seats)
	if n == 0 {
		s.DealerIndex, s.TurnIndex, s.HostID = 0, 0, ""
		return
	}
	// Keep the button where the next rotation lands on the seat after it.
	if idx <= s.DealerIndex {
		s.DealerIndex--
	}
	if s.DealerIndex < 0 {
		s.DealerIndex = n - 1
	}
	if idx < s.TurnIndex {
		s.TurnIndex--
	}
	if s.TurnIndex >= n {
		s.TurnIndex = 0
	}
	if s.HostID == id {
		s.HostID = s.Seats[0].ID
	}
}

func (s *State) setBlinds(requester PlayerID, small, big int64) ([]Event, error) {
	if !s.seated(requester) {
		return nil, ErrUnknownPlayer
	}
	if requester != s.HostID {
		return nil, ErrNotAuthorized
	}
	if s.HandLive() {
		return nil, ErrHandInProgress
	}
	if small <= 0 || big <= small {
		return nil, fmt.Errorf("%w: small %d, big %d", ErrInvalidBlinds, small, big)
	}
	s.Blinds = Blinds{Small: small, Big: big}
	return []Event{s.seatListEvent()}, nil
}

func (s *State) startHand(requester PlayerID) ([]Event, error) {
	if !s.seated(requester) {
		return nil, ErrUnknownPlayer
	}
	if requester != s.HostID {
		return nil, ErrNotAuthorized
	}
	if s.HandLive() {
		return nil, ErrHandInProgress
	}
	var dealt []PlayerID
	for _, seat := range s.Seats {
		if s.funded(seat.ID) {
			dealt = append(dealt, seat.ID)
		}
	}
	if len(dealt) < 2 {
		return nil, ErrInsufficientSeats
	}

	s.resetHand()
	s.HandNumber++
	s.Phase = PhasePreFlop
	for _, seat := range s.Seats {
		if !s.funded(seat.ID) {
			s.Folded[seat.ID] = true // sitting out
		}
	}

	s.DealerIndex = s.nextSeat(s.DealerIndex, s.funded)
	sb := s.nextSeat(s.DealerIndex, s.funded)
	if len(dealt) == 2 {
		sb = s.DealerIndex // heads-up: the button posts the small blind
	}
	bb := s.nextSeat(sb, s.funded)

	deck := shuffledDeck()
	for round := 0; round < 2; round++ {
		for _, id := range s.orderFromDealer() {
			if s.Folded[id] {
				continue
			}
			hole := s.HoleCards[id]
			hole[round] = deck.Pop()
			s.HoleCards[id] = hole
		}
	}
	for i := range s.board {
		s.board[i] = deck.Pop()
	}

	s.post(s.Seats[sb].ID, s.Blinds.Small)
	s.post(s.Seats[bb].ID, s.Blinds.Big)
	for _, v := range s.StreetBets {
		s.CurrentBet = max(s.CurrentBet, v)
	}
	s.LastRaiseSize = s.Blinds.Big
	s.TurnIndex = bb
	s.advanceTurn()

	events := []Event{
		{
			Type:        EvtHandStarted,
			HoleCards:   cloneMap(s.HoleCards),
			DealerIndex: s.DealerIndex,
			TurnIndex:   s.TurnIndex,
			Phase:       s.Phase,
		},
		s.betsEvent(),
	}
	// Short blinds can leave nobody with a decision.
	if s.streetClosed() {
		s.closeStreet(&events)
	}
	return events, nil
}

// post puts up a forced bet, all-in if the stack can't cover it.
func (s *State) post(id PlayerID, amount int64) {
	s.commit(id, min(amount, s.Stacks[id]))
}

// commit moves chips from a stack into the live bet.
func (s *State) commit(id PlayerID, amount int64) {
	if amount < 0 || amount > s.Stacks[id] {
		panic(fmt.Sprintf("engine: commit %d from stack %d", amount, s.Stacks[id]))
	}
	s.Stacks[id] -= amount
	s.StreetBets[id] += amount
	s.HandBets[id] += amount
	if s.Stacks[id] == 0 {
		s.AllIn[id] = true
	}
}

func (s *State) requireTurn(id PlayerID) error {
	if !s.HandLive() {
		return ErrNoHandInProgress
	}
	if !s.seated(id) {
		return ErrUnknownPlayer
	}
	if s.CurrentPlayer() != id || !s.canAct(id) {
		return ErrNotYourTurn
	}
	return nil
}

func (s *State) minRaise() int64 {
	return max(s.LastRaiseSize, s.Blinds.Big)
}

func (s *State) raise(id PlayerID, total int64) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	if total <= s.CurrentBet {
		return nil, fmt.Errorf("%w: raise to %d does not exceed current bet %d", ErrInvalidRaise, total, s.CurrentBet)
	}
	delta := total - s.CurrentBet
	if delta < s.minRaise() {
		return nil, fmt.Errorf("%w: raise of %d below minimum %d", ErrInvalidRaise, delta, s.minRaise())
	}
	if s.Acted[id] {
		return nil, fmt.Errorf("%w: action was not reopened", ErrInvalidRaise)
	}
	need := total - s.StreetBets[id]
	if s.Stacks[id] < need {
		return nil, fmt.Errorf("%w: %w: need %d, have %d", ErrInvalidRaise, ErrInsufficientChips, need, s.Stacks[id])
	}

	s.commit(id, need)
	s.CurrentBet = total
	s.LastRaiseSize = delta
	s.Acted = map[PlayerID]bool{id: true}

	events := []Event{s.betsEvent()}
	s.settle(&events, true)
	return events, nil
}

func (s *State) call(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	owed := s.CurrentBet - s.StreetBets[id]
	if owed <= 0 {
		return s.check(id)
	}
	if s.Stacks[id] < owed {
		return nil, fmt.Errorf("%w: call %d, have %d", ErrInsufficientChips, owed, s.Stacks[id])
	}

	s.commit(id, owed)
	s.Acted[id] = true

	events := []Event{s.betsEvent()}
	s.settle(&events, true)
	return events, nil
}

func (s *State) check(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	if owed := s.CurrentBet - s.StreetBets[id]; owed > 0 {
		return nil, fmt.Errorf("%w: %d to call", ErrCannotCheck, owed)
	}
	s.Acted[id] = true

	var events []Event
	s.settle(&events, true)
	return events, nil
}

func (s *State) fold(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	events := []Event{s.foldSeat(id)}
	s.settle(&events, true)
	return events, nil
}

func (s *State) foldSeat(id PlayerID) Event {
	s.Folded[id] = true
	return Event{Type: EvtSeatFolded, PlayerID: id}
}

// allIn is always legal with chips behind. An all-in that raises by less than a
// full raise moves CurrentBet but not LastRaiseSize, and seats that already
// acted may only call or fold it.
func (s *State) allIn(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	if s.Stacks[id] <= 0 {
		return nil, ErrInsufficientChips
	}

	s.commit(id, s.Stacks[id])
	s.Acted[id] = true
	if bet := s.StreetBets[id]; bet > s.CurrentBet {
		if delta := bet - s.CurrentBet; delta >= s.minRaise() {
			s.LastRaiseSize = delta
			s.Acted = map[PlayerID]bool{id: true}
		}
		s.CurrentBet = bet
	}

	events := []Event{s.betsEvent()}
	s.settle(&events, true)
	return events, nil
}

// timeout is the turn clock acting for an idle seat.
func (s *State) timeout(id PlayerID) ([]Event, error) {
	if err := s.requireTurn(id); err != nil {
		return nil, err
	}
	if s.CurrentBet > s.StreetBets[id] {
		return s.fold(id)
	}
	return s.check(id)
}

// settle runs after every action: fold-out, street close, or pass the turn.
// advance is false when a seat folded out of turn and the turn stays put.
func (s *State) settle(events *[]Event, advance bool) {
	if notFolded, _ := s.liveCounts(); notFolded == 1 {
		s.foldOut(events)
		return
	}
	if s.streetClosed() {
		s.closeStreet(events)
		return
	}
	if advance {
		s.advanceTurn()
		*events = append(*events, s.turnEvent())
	}
}

// streetClosed: every seat that can still act has matched the bet and acted
// since the last full raise. Blinds are not actions, which is what gives the
// big blind its option. A lone seat that can act and has matched has nothing
// left to decide.
func (s *State) streetClosed() bool {
	var open []PlayerID
	for _, seat := range s.Seats {
		if s.canAct(seat.ID) {
			open = append(open, seat.ID)
		}
	}
	for _, id := range open {
		if s.StreetBets[id] != s.CurrentBet {
			return false
		}
	}
	if len(open) <= 1 {
		return true
	}
	for _, id := range open {
		if !s.Acted[id] {
			return false
		}
	}
	return true
}

func (s *State) sweep() {
	for _, v := range s.StreetBets {
		s.Pot += v
	}
	s.StreetBets = map[PlayerID]int64{}
	s.CurrentBet = 0
	s.LastRaiseSize = s.Blinds.Big
	s.Acted = map[PlayerID]bool{}
}

func (s *State) closeStreet(events *[]Event) {
	s.sweep()
	*events = append(*events, s.betsEvent())
	if s.Phase == PhaseRiver {
		s.showdown(events)
		return
	}
	if _, actionable := s.liveCounts(); actionable < 2 {
		// Nobody left to bet against: run the board out.
		for s.Phase != PhaseRiver {
			s.revealNext()
			*events = append(*events, s.streetEvent())
		}
		s.showdown(events)
		return
	}
	s.revealNext()
	*events = append(*events, s.streetEvent())
}

func (s *State) revealNext() {
	var shown int
	switch s.Phase {
	case PhasePreFlop:
		s.Phase, shown = PhaseFlop, 3
	case PhaseFlop:
		s.Phase, shown = PhaseTurn, 4
	case PhaseTurn:
		s.Phase, shown = PhaseRiver, 5
	default:
		panic(fmt.Sprintf("engine: no street after %s", s.Phase))
	}
	s.Community = slices.Clone(s.board[:shown])
	s.TurnIndex = s.firstToActAfterDealer()
}

// foldOut hands everything to the last seat holding cards. Nothing is shown.
func (s *State) foldOut(events *[]Event) {
	winner := s.nextSeat(-1, s.notFolded)
	id := s.Seats[winner].ID
	s.sweep()
	won := s.Pot
	s.Stacks[id] += won
	s.Pot = 0
	s.TurnIndex = winner

	*events = append(*events, s.betsEvent(), Event{
		Type:    EvtHandEnded,
		Winners: []Payout{{PlayerID: id, Amount: won}},
		Stacks:  cloneMap(s.Stacks),
		Phase:   PhaseHandEnded,
	})
	s.endHand(events)
}

// endHand drops the hole cards and seats that left during the hand.
func (s *State) endHand(events *[]Event) {
	s.Phase = PhaseHandEnded
	s.HoleCards = map[PlayerID][2]Card{}
	var leaving []PlayerID
	for _, seat := range s.Seats {
		if s.Leaving[seat.ID] {
			leaving = append(leaving, seat.ID)
		}
	}
	for _, id := range leaving {
		s.removeSeat(id)
	}
	if len(leaving) > 0 {
		*events = append(*events, s.seatListEvent())
	}
}
