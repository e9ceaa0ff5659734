package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRoster is a user's fantasy lineup for one tournament. TotalWinnings
// is derived: the winnings propagator recomputes it from entrant payouts
// and it must never be hand-edited.
type UserRoster struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	TournamentID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"tournament_id"`
	Tournament    *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	Name          string      `json:"name"`
	TotalWinnings float64     `json:"total_winnings"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Associations
	Players []RosterPlayer `gorm:"foreignKey:RosterID" json:"players,omitempty"`
}

// TableName specifies the table name for GORM
func (UserRoster) TableName() string {
	return "user_rosters"
}

// RosterPlayer links a roster slot to a tournament entrant
type RosterPlayer struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RosterID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_roster_entrant,priority:1" json:"roster_id"`
	TournamentPlayerID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_roster_entrant,priority:2" json:"tournament_player_id"`
	TournamentPlayer   *TournamentPlayer `gorm:"foreignKey:TournamentPlayerID" json:"tournament_player,omitempty"`
	Cost               float64           `json:"cost"`
	CreatedAt          time.Time         `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RosterPlayer) TableName() string {
	return "roster_players"
}

// SeasonStanding is a user's season-long aggregate, recomputed from roster
// totals whenever winnings propagate
type SeasonStanding struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_season,priority:1" json:"user_id"`
	SeasonYear    int       `gorm:"not null;uniqueIndex:idx_user_season,priority:2" json:"season_year"`
	TotalWinnings float64   `json:"total_winnings"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SeasonStanding) TableName() string {
	return "season_standings"
}
