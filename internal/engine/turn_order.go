package engine

// Seating is an explicit slice, so rotation never depends on map order.

func (s *State) seatIndex(id PlayerID) int {
	for i, seat := range s.Seats {
		if seat.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) seated(id PlayerID) bool {
	return s.seatIndex(id) >= 0
}

// nextSeat walks clockwise from (but not including) from and returns the first
// seat matching ok, or -1. from == -1 starts the walk at seat 0.
func (s *State) nextSeat(from int, ok func(PlayerID) bool) int {
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if ok(s.Seats[idx].ID) {
			return idx
		}
	}
	return -1
}

func (s *State) funded(id PlayerID) bool { return s.Stacks[id] > 0 }

func (s *State) notFolded(id PlayerID) bool { return !s.Folded[id] }

// canAct: still in the hand with chips behind.
func (s *State) canAct(id PlayerID) bool { return !s.Folded[id] && !s.AllIn[id] }

func (s *State) liveCounts() (notFolded, actionable int) {
	for _, seat := range s.Seats {
		if s.Folded[seat.ID] {
			continue
		}
		notFolded++
		if !s.AllIn[seat.ID] {
			actionable++
		}
	}
	return notFolded, actionable
}

// CurrentPlayer is the seat on turn, or "" outside a live hand.
func (s State) CurrentPlayer() PlayerID {
	if !s.HandLive() || s.TurnIndex < 0 || s.TurnIndex >= len(s.Seats) {
		return ""
	}
	return s.Seats[s.TurnIndex].ID
}

func (s *State) advanceTurn() {
	if next := s.nextSeat(s.TurnIndex, s.canAct); next >= 0 {
		s.TurnIndex = next
	}
}

// firstToActAfterDealer opens a post-flop street. On a runout nobody can act,
// so the turn parks on the first seat still holding cards.
func (s *State) firstToActAfterDealer() int {
	if idx := s.nextSeat(s.DealerIndex, s.canAct); idx >= 0 {
		return idx
	}
	return s.nextSeat(s.DealerIndex, s.notFolded)
}

// orderFromDealer lists seats starting left of the dealer.
func (s *State) orderFromDealer() []PlayerID {
	n := len(s.Seats)
	out := make([]PlayerID, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.Seats[(s.DealerIndex+i)%n].ID)
	}
	return out
}
