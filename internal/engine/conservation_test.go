package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// Plays many random hands and checks chip conservation and turn validity after
// every accepted action.
func TestRandomPlayConservesChips(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	s := newTable(t, Blinds{Small: 5, Big: 10}, 300, 150, 500, 80, 220)
	playRandomHands(t, r, s, 300, 0)
}

// Same, with disconnects from any seat (on turn or not) and turn clock
// expiries mixed in. A removed seat takes its stack with it.
func TestRandomPlayWithLeavesConservesChips(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		r := rand.New(rand.NewPCG(seed, 7))
		s := newTable(t, Blinds{Small: 5, Big: 10}, 300, 150, 500, 80, 220, 400)
		playRandomHands(t, r, s, 30, 25)
	}
}

// playRandomHands plays up to hands hands. With leaveOdds > 0, roughly one
// action in leaveOdds is a Leave aimed at a random seat.
func playRandomHands(t *testing.T, r *rand.Rand, s State, hands, leaveOdds int) {
	t.Helper()
	total := s.ChipsInPlay()

	kinds := []CommandType{CmdCall, CmdCheck, CmdRaise, CmdFold, CmdAllIn, CmdTimeout, CmdCall, CmdCheck}
	for hand := 0; hand < hands; hand++ {
		_, next, err := Apply(s, Command{Type: CmdStartHand, PlayerID: s.HostID})
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientSeats)
			return
		}
		s = next

		for steps := 0; s.HandLive(); steps++ {
			require.Less(t, steps, 500, "hand %d never finished", hand)
			id := s.CurrentPlayer()
			cmd := Command{Type: kinds[r.IntN(len(kinds))], PlayerID: id}
			if leaveOdds > 0 && r.IntN(leaveOdds) == 0 {
				cmd = Command{Type: CmdLeave, PlayerID: s.Seats[r.IntN(len(s.Seats))].ID}
			}
			if cmd.Type == CmdRaise {
				cmd.Amount = s.CurrentBet + s.minRaise() + r.Int64N(3)*s.Blinds.Big
			}

			_, next, err := Apply(s, cmd)
			if err != nil {
				// Folding on turn is always legal.
				_, next, err = Apply(s, Command{Type: CmdFold, PlayerID: id})
				require.NoError(t, err)
			}
			for gone, stack := range s.Stacks {
				if _, ok := next.Stacks[gone]; !ok {
					total -= stack
				}
			}
			s = next

			require.Equal(t, total, s.ChipsInPlay(), "hand %d step %d", hand, steps)
			for id, stack := range s.Stacks {
				require.GreaterOrEqual(t, stack, int64(0))
				if s.AllIn[id] && s.HandLive() {
					require.Zero(t, stack, "all-in seat %s has chips", id)
				}
			}
			if notFolded, actionable := s.liveCounts(); s.HandLive() && notFolded >= 2 && actionable > 0 {
				require.False(t, s.Folded[s.CurrentPlayer()], "turn on folded seat")
			}
		}
		require.Zero(t, s.Pot)
		require.Empty(t, s.StreetBets)
		require.Empty(t, s.Leaving, "leavers still seated after hand %d", hand)
	}
}
