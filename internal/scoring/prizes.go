package scoring

import (
	"math"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
)

// Payout is one entrant's computed prize money
type Payout struct {
	PlayerName string  `json:"player_name"`
	Position   int     `json:"position"`
	TieCount   int     `json:"tie_count"`
	Amateur    bool    `json:"amateur"`
	Amount     float64 `json:"amount"`
}

// CalculateWinnings computes a money amount per ranked entrant from a prize
// table.
//
// Amateurs occupy nominal positions but never collect: a professional's
// lookup index into the table shifts down by the count of amateurs strictly
// ahead of them, and a tie pool is split only among the paid members of the
// group. The sum of all payouts always equals the sum of the table amounts
// for the positions paid entrants actually occupy; tie-splitting and
// amateur adjustment move money around, they never create or destroy it.
func CalculateWinnings(ranked []RankedScore, table *models.PrizeTable) []Payout {
	payouts := make([]Payout, len(ranked))
	for i, r := range ranked {
		payouts[i] = Payout{
			PlayerName: r.PlayerName,
			Position:   r.Position,
			TieCount:   r.TieCount,
			Amateur:    r.Amateur,
		}
	}
	if table == nil {
		return payouts
	}

	for start := 0; start < len(ranked); {
		end := start
		for end < len(ranked) && ranked[end].Position == ranked[start].Position {
			end++
		}

		group := ranked[start:end]
		if group[0].Position == 0 {
			// No assigned position: missed cut, withdrew, or not started.
			start = end
			continue
		}

		paid := make([]int, 0, len(group))
		for i := range group {
			if !group[i].Amateur {
				paid = append(paid, start+i)
			}
		}
		if len(paid) > 0 {
			adjusted := group[0].Position - amateursAhead(ranked, group[0].Position)
			amount := tieShare(table, adjusted, len(paid))
			for _, i := range paid {
				payouts[i].Amount = amount
			}
		}

		start = end
	}

	return payouts
}

// amateursAhead counts amateurs in strictly better positions
func amateursAhead(ranked []RankedScore, position int) int {
	count := 0
	for i := range ranked {
		if ranked[i].Amateur && ranked[i].Position > 0 && ranked[i].Position < position {
			count++
		}
	}
	return count
}

// tieShare returns the per-player amount for a tie of `size` paid entrants
// at adjusted position `position`. An official tie-split amount from the
// table wins over the naive average, since governing bodies round splits
// rather than dividing evenly.
func tieShare(table *models.PrizeTable, position, size int) float64 {
	if amount, ok := table.TieAmount(position, size); ok {
		return amount
	}
	pool := 0.0
	for i := 0; i < size; i++ {
		pool += table.AmountFor(position + i)
	}
	return roundCents(pool / float64(size))
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
