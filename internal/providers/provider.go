package providers

import (
	"context"
	"strconv"
	"time"
)

// ProviderName identifies a leaderboard data source
type ProviderName string

const (
	ProviderLiveGolf ProviderName = "livegolf"
	ProviderESPN     ProviderName = "espn"
)

// ThruState classifies what a leaderboard "thru" value means for an entrant
type ThruState string

const (
	// ThruNotStarted means the thru field carried a tee time
	ThruNotStarted ThruState = "not_started"
	// ThruPlaying means the entrant is mid-round
	ThruPlaying ThruState = "playing"
	// ThruFinished means the entrant has completed the current round
	ThruFinished ThruState = "finished"
)

// Thru is the decoded "thru" field: exactly one of a hole count, a finished
// marker, or a tee time meaning the round has not begun
type Thru struct {
	State   ThruState `json:"state"`
	Holes   int       `json:"holes,omitempty"`
	TeeTime string    `json:"tee_time,omitempty"`
}

// String renders the thru value back into leaderboard display form
func (t Thru) String() string {
	switch t.State {
	case ThruFinished:
		return "F"
	case ThruPlaying:
		return strconv.Itoa(t.Holes)
	}
	return t.TeeTime
}

// CanonicalPlayerScore is the provider-agnostic record for one entrant's
// current tournament state. Everything downstream of a provider adapter
// operates on this shape.
type CanonicalPlayerScore struct {
	PlayerName   string `json:"player_name"`
	TotalToPar   int    `json:"total_to_par"`
	TodayToPar   int    `json:"today_to_par"`
	Thru         Thru   `json:"thru"`
	RoundStrokes []int  `json:"round_strokes"`
	TeeTime      string `json:"tee_time"`
	StartHole    int    `json:"start_hole"`
	Amateur      bool   `json:"amateur"`
	// Status carries a non-numeric position marker ("cut", "wd", "dq",
	// "mdf"); empty for entrants still in the field.
	Status string `json:"status,omitempty"`
	// RawPosition is the provider's own position field (0 when absent);
	// kept for cross-checking, never used for prize math.
	RawPosition int  `json:"raw_position"`
	RawTied     bool `json:"raw_tied"`
}

// MadeCut reports whether the entrant is still in (or finished) the
// tournament proper. MDF entrants are sent home after the secondary cut
// and count as out alongside cut, withdrawn, and disqualified players.
func (s *CanonicalPlayerScore) MadeCut() bool {
	switch s.Status {
	case "cut", "wd", "dq", "mdf":
		return false
	}
	return true
}

// HasStarted reports whether the entrant has begun the current round
func (s *CanonicalPlayerScore) HasStarted() bool {
	return s.Thru.State != ThruNotStarted
}

// LeaderboardSnapshot is one provider fetch, normalized
type LeaderboardSnapshot struct {
	EventID      string                 `json:"event_id"`
	Season       int                    `json:"season"`
	CurrentRound int                    `json:"current_round"`
	Status       string                 `json:"status"`
	Scores       []CanonicalPlayerScore `json:"scores"`
	FetchedAt    time.Time              `json:"fetched_at"`
}

// LeaderboardProvider is the adapter boundary for one external data source.
// Implementations own their wire format; callers only ever see canonical
// records.
type LeaderboardProvider interface {
	Name() ProviderName
	FetchLeaderboard(ctx context.Context, eventID string, season int) (*LeaderboardSnapshot, error)
}
