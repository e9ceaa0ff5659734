package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
)

func activeTournament(tz string) *models.Tournament {
	return &models.Tournament{
		Name:     "Test Open",
		Status:   models.TournamentActive,
		Timezone: tz,
	}
}

func TestShouldPoll_ActiveInsideWindow(t *testing.T) {
	// Friday 14:00 Eastern
	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, 6, 13, 14, 0, 0, 0, eastern)

	decision := ShouldPoll(now, activeTournament("America/New_York"))

	assert.True(t, decision.Poll)
}

func TestShouldPoll_ActiveOutsideWindowDays(t *testing.T) {
	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Tuesday afternoon: practice rounds, no leaderboard
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, eastern)

	decision := ShouldPoll(now, activeTournament("America/New_York"))

	assert.False(t, decision.Poll)
	assert.Greater(t, decision.NextCheckMinutes, 0)
}

func TestShouldPoll_ActiveBeforeTeeTimes(t *testing.T) {
	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Thursday 05:00 local, window opens at 07:00
	now := time.Date(2025, 6, 12, 5, 0, 0, 0, eastern)

	decision := ShouldPoll(now, activeTournament("America/New_York"))

	assert.False(t, decision.Poll)
	assert.Equal(t, 120, decision.NextCheckMinutes)
}

func TestShouldPoll_RespectsEventTimezone(t *testing.T) {
	// 13:00 UTC on a Sunday is 03:00 in Hawaii, before the window opens
	now := time.Date(2025, 1, 19, 13, 0, 0, 0, time.UTC)

	decision := ShouldPoll(now, activeTournament("Pacific/Honolulu"))
	assert.False(t, decision.Poll)

	// same instant is 08:00 on the east coast
	decision = ShouldPoll(now, activeTournament("America/New_York"))
	assert.True(t, decision.Poll)
}

func TestShouldPoll_CompletedNeverPolls(t *testing.T) {
	now := time.Date(2025, 6, 13, 14, 0, 0, 0, time.UTC)
	tournament := activeTournament("America/New_York")
	tournament.Status = models.TournamentCompleted

	decision := ShouldPoll(now, tournament)

	assert.False(t, decision.Poll)
	assert.Equal(t, 24*60, decision.NextCheckMinutes)
}

func TestShouldPoll_UpcomingBacksOffUntilStart(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tournament := activeTournament("America/New_York")
	tournament.Status = models.TournamentUpcoming
	tournament.StartDate = now.Add(48 * time.Hour)

	decision := ShouldPoll(now, tournament)

	assert.False(t, decision.Poll)
	assert.Equal(t, 48*60, decision.NextCheckMinutes)
}

func TestShouldPoll_UpcomingStartingSoonMinimumBackoff(t *testing.T) {
	now := time.Date(2025, 6, 12, 6, 0, 0, 0, time.UTC)
	tournament := activeTournament("America/New_York")
	tournament.Status = models.TournamentUpcoming
	tournament.StartDate = now.Add(10 * time.Minute)

	decision := ShouldPoll(now, tournament)

	assert.False(t, decision.Poll)
	assert.Equal(t, 60, decision.NextCheckMinutes)
}

func TestUntilWindowOpens_WrapsToNextThursday(t *testing.T) {
	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// Sunday 23:30: window reopens Thursday 07:00
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, eastern)

	wait := untilWindowOpens(now)

	assert.Equal(t, 3*24*time.Hour+7*time.Hour+30*time.Minute, wait)
}
