package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Schless09/Fore-cast-sub001/internal/providers"
)

func score(name string, total int) providers.CanonicalPlayerScore {
	return providers.CanonicalPlayerScore{
		PlayerName: name,
		TotalToPar: total,
		Thru:       providers.Thru{State: providers.ThruFinished, Holes: 18},
	}
}

func TestAssignPositionsEmpty(t *testing.T) {
	assert.Nil(t, AssignPositions(nil))
	assert.Nil(t, AssignPositions([]providers.CanonicalPlayerScore{}))
}

func TestAssignPositionsSingle(t *testing.T) {
	ranked := AssignPositions([]providers.CanonicalPlayerScore{score("A", -3)})
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Position)
	assert.Equal(t, 1, ranked[0].TieCount)
}

func TestAssignPositionsGolfTieConvention(t *testing.T) {
	// Three players tied at -5 all show T1; the next entrant is 4th, not 2nd.
	ranked := AssignPositions([]providers.CanonicalPlayerScore{
		score("A", -5),
		score("B", -5),
		score("C", -5),
		score("D", -3),
		score("E", 1),
	})

	require.Len(t, ranked, 5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, ranked[i].Position)
		assert.Equal(t, 3, ranked[i].TieCount)
	}
	assert.Equal(t, 4, ranked[3].Position)
	assert.Equal(t, 1, ranked[3].TieCount)
	assert.Equal(t, 5, ranked[4].Position)
}

func TestAssignPositionsMonotonic(t *testing.T) {
	scores := []providers.CanonicalPlayerScore{
		score("A", 2), score("B", -7), score("C", -7), score("D", 0),
		score("E", -7), score("F", -2), score("G", -2), score("H", 9),
	}
	ranked := AssignPositions(scores)

	// Positions are non-decreasing down the sorted list and the position
	// after a tie group of size N at P is exactly P+N.
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i].Position, ranked[i-1].Position)
		if ranked[i].Position != ranked[i-1].Position {
			assert.Equal(t, ranked[i-1].Position+ranked[i-1].TieCount, ranked[i].Position)
		} else {
			assert.Equal(t, ranked[i-1].TieCount, ranked[i].TieCount)
		}
	}
}

func TestAssignPositionsDisplayTieBreak(t *testing.T) {
	a := score("Ahead", -5)
	a.TodayToPar = -4
	a.Thru = providers.Thru{State: providers.ThruPlaying, Holes: 15}
	b := score("Behind", -5)
	b.TodayToPar = -2
	b.Thru = providers.Thru{State: providers.ThruPlaying, Holes: 10}

	ranked := AssignPositions([]providers.CanonicalPlayerScore{b, a})

	// Today's score orders rows within the tie group for display, but both
	// entrants keep the shared position and tie count.
	require.Len(t, ranked, 2)
	assert.Equal(t, "Ahead", ranked[0].PlayerName)
	assert.Equal(t, 1, ranked[0].Position)
	assert.Equal(t, 1, ranked[1].Position)
	assert.Equal(t, 2, ranked[0].TieCount)
	assert.Equal(t, 2, ranked[1].TieCount)
}

func TestPrizeEligible(t *testing.T) {
	notStarted := score("Waiting", 0)
	notStarted.Thru = providers.Thru{State: providers.ThruNotStarted, TeeTime: "1:35 PM"}
	cut := score("Cut", 6)
	cut.Status = "cut"
	withdrawn := score("Withdrawn", 2)
	withdrawn.Status = "wd"

	filtered := PrizeEligible([]providers.CanonicalPlayerScore{
		score("Playing", -2), notStarted, cut, withdrawn,
	})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Playing", filtered[0].PlayerName)
}
