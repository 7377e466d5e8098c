package engine

import "math/rand/v2"

// Deck is dealt from the end.
type Deck []Card

// NewShuffledDeck returns the 52 cards in a uniformly random order.
func NewShuffledDeck() Deck {
	deck := make(Deck, 0, 52)
	for s := SuitClubs; s <= SuitSpades; s++ {
		for r := RankTwo; r <= RankAce; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	// Fisher-Yates
	for i := len(deck) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Pop removes and returns the last card. A table never needs more than 45
// cards, so running dry means the hand state is corrupt.
func (d *Deck) Pop() Card {
	n := len(*d)
	if n == 0 {
		panic("engine: pop from exhausted deck")
	}
	c := (*d)[n-1]
	*d = (*d)[:n-1]
	return c
}

// shuffledDeck is swapped out by tests that need a known deal.
var shuffledDeck = NewShuffledDeck
