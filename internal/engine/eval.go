package engine

import (
	"fmt"

	"github.com/paulhankin/poker"
)

// HandRank orders 7-card hands: higher is better, equal ranks split the pot.
// Suits never break ties.
type HandRank int16

func toPokerCard(c Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit {
	case SuitClubs:
		s = poker.Club
	case SuitDiamonds:
		s = poker.Diamond
	case SuitHearts:
		s = poker.Heart
	case SuitSpades:
		s = poker.Spade
	default:
		return 0, fmt.Errorf("invalid suit %d", c.Suit)
	}
	r := poker.Rank(c.Rank)
	if c.Rank == RankAce {
		r = 1
	}
	return poker.MakeCard(s, r)
}

func sevenCards(hole [2]Card, board [5]Card) [7]poker.Card {
	var out [7]poker.Card
	for i, c := range append(board[:], hole[:]...) {
		pc, err := toPokerCard(c)
		if err != nil {
			panic(fmt.Sprintf("engine: evaluating %v: %v", c, err))
		}
		out[i] = pc
	}
	return out
}

// Evaluate ranks two hole cards plus the full board.
func Evaluate(hole [2]Card, board [5]Card) HandRank {
	cards := sevenCards(hole, board)
	return HandRank(poker.Eval7(&cards))
}

// Describe names the best five card hand, e.g. "straight, five high".
func Describe(hole [2]Card, board [5]Card) string {
	cards := sevenCards(hole, board)
	desc, err := poker.Describe(cards[:])
	if err != nil {
		return ""
	}
	return desc
}
