package engine

import "fmt"

// showdown pays every pot layer to the best hands eligible for it and reveals
// the hole cards of every seat still in the hand.
func (s *State) showdown(events *[]Event) {
	s.Phase = PhaseShowdown

	pots := BuildSidePots(s.HandBets, s.Folded)
	if total := PotTotal(pots); total != s.Pot {
		panic(fmt.Sprintf("engine: side pots hold %d, pot is %d", total, s.Pot))
	}

	ranks := make(map[PlayerID]HandRank)
	revealed := make(map[PlayerID][2]Card)
	for _, seat := range s.Seats {
		if s.Folded[seat.ID] {
			continue
		}
		hole := s.HoleCards[seat.ID]
		ranks[seat.ID] = Evaluate(hole, s.board)
		revealed[seat.ID] = hole
	}

	winnersByPot := make([][]PlayerID, len(pots))
	for i, pot := range pots {
		winnersByPot[i] = bestOf(pot.Eligible, ranks)
	}
	payouts, undistributed := Distribute(pots, winnersByPot, s.orderFromDealer())
	if undistributed != 0 {
		panic(fmt.Sprintf("engine: %d chips left without a winner", undistributed))
	}

	var winners []Payout
	for _, seat := range s.Seats {
		won, ok := payouts[seat.ID]
		if !ok {
			continue
		}
		s.Stacks[seat.ID] += won
		winners = append(winners, Payout{
			PlayerID: seat.ID,
			Amount:   won,
			Hand:     Describe(s.HoleCards[seat.ID], s.board),
		})
	}
	s.Pot = 0

	*events = append(*events, Event{
		Type:      EvtHandEnded,
		Winners:   winners,
		HoleCards: revealed,
		Community: append([]Card(nil), s.Community...),
		Stacks:    cloneMap(s.Stacks),
		Phase:     PhaseHandEnded,
	})
	s.endHand(events)
}

// bestOf returns the ids in eligible holding the highest rank.
func bestOf(eligible []PlayerID, ranks map[PlayerID]HandRank) []PlayerID {
	var best []PlayerID
	var top HandRank
	for _, id := range eligible {
		r, ok := ranks[id]
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || r > top:
			best, top = []PlayerID{id}, r
		case r == top:
			best = append(best, id)
		}
	}
	return best
}
