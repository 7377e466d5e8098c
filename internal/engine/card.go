package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Suit byte

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

type Rank byte

// Ace is high (14); it also plays low in the wheel, which the evaluator handles.
const (
	RankTwo Rank = iota + 2
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
)

type Card struct {
	Rank Rank
	Suit Suit
}

const rankChars = "23456789TJQKA"
const suitChars = "cdhs"

func (c Card) valid() bool {
	return c.Rank >= RankTwo && c.Rank <= RankAce && c.Suit <= SuitSpades
}

// String renders a card as "As", "Td", "2c".
func (c Card) String() string {
	if !c.valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank-RankTwo], suitChars[c.Suit]})
}

// ParseCard reads the two character form produced by String. Case is ignored
// and "10" is accepted for tens.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card literal %q", s)
	}
	r := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if r < 0 {
		return Card{}, fmt.Errorf("invalid rank in %q", s)
	}
	u := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if u < 0 {
		return Card{}, fmt.Errorf("invalid suit in %q (use c/d/h/s)", s)
	}
	return Card{Rank: Rank(r) + RankTwo, Suit: Suit(u)}, nil
}

// MustParseCards parses a space separated list of cards and panics on bad input.
// Intended for fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func (c Card) MarshalJSON() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid card: rank %d suit %d", c.Rank, c.Suit)
	}
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
