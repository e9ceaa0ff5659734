package scoring

import (
	"sort"

	"github.com/Schless09/Fore-cast-sub001/internal/providers"
)

// RankedScore is a canonical score with its assigned standing
type RankedScore struct {
	providers.CanonicalPlayerScore
	Position int `json:"position"`
	TieCount int `json:"tie_count"`
}

// AssignPositions ranks entrants by golf convention: ascending total-to-par,
// every member of a tie group sharing one position number, and the entrant
// after an N-way tie at position P landing at P+N. Within a tie group,
// today's score and holes completed order the rows for display only; they
// never split the group.
//
// Callers choose the comparison population. For prize math, filter with
// PrizeEligible first so money is never pre-assigned before a round begins
// and never lands on an entrant who is out of the tournament.
func AssignPositions(scores []providers.CanonicalPlayerScore) []RankedScore {
	if len(scores) == 0 {
		return nil
	}

	ranked := make([]RankedScore, len(scores))
	for i, s := range scores {
		ranked[i] = RankedScore{CanonicalPlayerScore: s}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalToPar != b.TotalToPar {
			return a.TotalToPar < b.TotalToPar
		}
		if a.TodayToPar != b.TodayToPar {
			return a.TodayToPar < b.TodayToPar
		}
		// More holes completed means the today score is more locked in.
		return a.Thru.Holes > b.Thru.Holes
	})

	for start := 0; start < len(ranked); {
		end := start
		for end < len(ranked) && ranked[end].TotalToPar == ranked[start].TotalToPar {
			end++
		}
		position := start + 1
		size := end - start
		for i := start; i < end; i++ {
			ranked[i].Position = position
			ranked[i].TieCount = size
		}
		start = end
	}

	return ranked
}

// PrizeEligible filters a score list down to entrants who can hold prize
// money: those who have begun their current round and have not been cut,
// withdrawn, or disqualified.
func PrizeEligible(scores []providers.CanonicalPlayerScore) []providers.CanonicalPlayerScore {
	eligible := make([]providers.CanonicalPlayerScore, 0, len(scores))
	for _, s := range scores {
		if s.HasStarted() && s.MadeCut() {
			eligible = append(eligible, s)
		}
	}
	return eligible
}
