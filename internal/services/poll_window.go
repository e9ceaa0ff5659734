package services

import (
	"fmt"
	"time"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
)

// PollDecision is the polling gate's verdict for one tournament
type PollDecision struct {
	Poll bool `json:"poll"`
	// Reason is human-readable, for logs and the sync status endpoint
	Reason string `json:"reason"`
	// NextCheckMinutes suggests how long the caller can back off
	NextCheckMinutes int `json:"next_check_minutes"`
}

// competition window: rounds run Thursday through Sunday in the event's
// own time zone
const (
	windowOpenHour = 7  // earliest tee times
	windowShutHour = 23 // last groups are long done
)

// ShouldPoll decides whether a live provider fetch is warranted right now.
// Every provider call in the pipeline passes through this gate; the
// external request budget is metered, so outside the Thu-Sun competition
// window the answer is no plus an estimate of when the window reopens.
// Pure function of the clock and tournament metadata.
func ShouldPoll(now time.Time, t *models.Tournament) PollDecision {
	switch t.Status {
	case models.TournamentCompleted:
		return PollDecision{
			Reason:           "tournament is completed",
			NextCheckMinutes: 24 * 60,
		}
	case models.TournamentUpcoming:
		minutes := int(t.StartDate.Sub(now).Minutes())
		if minutes < 60 {
			minutes = 60
		}
		return PollDecision{
			Reason:           fmt.Sprintf("tournament has not started (begins %s)", t.StartDate.Format("Jan 2")),
			NextCheckMinutes: minutes,
		}
	}

	local := now.In(t.Location())
	if inCompetitionWindow(local) {
		return PollDecision{
			Poll:   true,
			Reason: "active tournament inside competition window",
		}
	}

	wait := int(untilWindowOpens(local).Minutes())
	return PollDecision{
		Reason:           fmt.Sprintf("outside competition window (%s local)", local.Format("Mon 15:04")),
		NextCheckMinutes: wait,
	}
}

func inCompetitionWindow(local time.Time) bool {
	switch local.Weekday() {
	case time.Thursday, time.Friday, time.Saturday, time.Sunday:
		return local.Hour() >= windowOpenHour && local.Hour() < windowShutHour
	}
	return false
}

// untilWindowOpens computes the wait until the next Thursday-through-Sunday
// morning in local time
func untilWindowOpens(local time.Time) time.Duration {
	next := time.Date(local.Year(), local.Month(), local.Day(), windowOpenHour, 0, 0, 0, local.Location())
	for i := 0; i < 8; i++ {
		if next.After(local) && isCompetitionDay(next.Weekday()) {
			return next.Sub(local)
		}
		next = next.AddDate(0, 0, 1)
	}
	return 24 * time.Hour
}

func isCompetitionDay(d time.Weekday) bool {
	return d == time.Thursday || d == time.Friday || d == time.Saturday || d == time.Sunday
}
