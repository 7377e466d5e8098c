package engine

import (
	"slices"
	"sort"
)

// Pot is one layer of the pot. Only Eligible seats can win it.
type Pot struct {
	Amount   int64
	Eligible []PlayerID
}

// BuildSidePots layers the contributions in bets from the lowest level up.
// Every distinct bet level produces a layer funded by everyone who bet at least
// that much; folded contributors pay into a layer but are never eligible for it.
// A layer nobody can win (all of its contributors folded) is added to the layer
// below it.
func BuildSidePots(bets map[PlayerID]int64, folded map[PlayerID]bool) []Pot {
	type contrib struct {
		id  PlayerID
		amt int64
	}
	var cs []contrib
	for id, amt := range bets {
		if amt > 0 {
			cs = append(cs, contrib{id: id, amt: amt})
		}
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].amt != cs[j].amt {
			return cs[i].amt < cs[j].amt
		}
		return cs[i].id < cs[j].id
	})

	var pots []Pot
	prev := int64(0)
	for i := 0; i < len(cs); i++ {
		level := cs[i].amt
		if level == prev {
			continue
		}
		// cs[i:] all bet at least level
		amount := (level - prev) * int64(len(cs)-i)
		eligible := []PlayerID{}
		for _, c := range cs[i:] {
			if !folded[c.id] {
				eligible = append(eligible, c.id)
			}
		}
		slices.Sort(eligible)
		prev = level

		if len(eligible) == 0 && len(pots) > 0 {
			pots[len(pots)-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}
	return pots
}

// PotTotal sums every layer.
func PotTotal(pots []Pot) int64 {
	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// Distribute pays each layer to its winners, winnersByPot[i] being the best
// hands among pots[i].Eligible. Each winner gets floor(amount / winners); the
// odd chips go one at a time to winners in the order given by order (seats
// starting left of the dealer). Chips of a layer without any eligible winner
// are returned as undistributed.
func Distribute(pots []Pot, winnersByPot [][]PlayerID, order []PlayerID) (payouts map[PlayerID]int64, undistributed int64) {
	payouts = make(map[PlayerID]int64)
	for i, pot := range pots {
		var winners []PlayerID
		if i < len(winnersByPot) {
			for _, w := range winnersByPot[i] {
				if slices.Contains(pot.Eligible, w) && !slices.Contains(winners, w) {
					winners = append(winners, w)
				}
			}
		}
		if len(winners) == 0 {
			undistributed += pot.Amount
			continue
		}

		n := int64(len(winners))
		share, rem := pot.Amount/n, pot.Amount%n
		for _, w := range winners {
			payouts[w] += share
		}
		for _, id := range remainderOrder(winners, order) {
			if rem == 0 {
				break
			}
			payouts[id]++
			rem--
		}
	}
	return payouts, undistributed
}

// remainderOrder lists winners in seat order; winners missing from order go last.
func remainderOrder(winners, order []PlayerID) []PlayerID {
	out := make([]PlayerID, 0, len(winners))
	for _, id := range order {
		if slices.Contains(winners, id) {
			out = append(out, id)
		}
	}
	for _, w := range winners {
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}
