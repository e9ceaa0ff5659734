package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PGAPlayer represents an internally tracked professional golfer
type PGAPlayer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Country   string         `json:"country"`
	Aliases   pq.StringArray `gorm:"type:text[]" json:"aliases"`
	OwgrRank  int            `json:"owgr_rank"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PGAPlayer) TableName() string {
	return "pga_players"
}

// TournamentPlayer is the persisted per-entrant record for one tournament.
// Scoring fields are overwritten wholesale on every sync; nothing here is
// incremented, so repeated runs converge on the same state.
type TournamentPlayer struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TournamentID uuid.UUID   `gorm:"not null;uniqueIndex:idx_tournament_entrant,priority:1" json:"tournament_id"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	PGAPlayerID  *uuid.UUID  `gorm:"type:uuid;index" json:"pga_player_id"`
	PGAPlayer    *PGAPlayer  `gorm:"foreignKey:PGAPlayerID" json:"pga_player,omitempty"`
	Name         string      `gorm:"not null;uniqueIndex:idx_tournament_entrant,priority:2" json:"name"`

	TotalToPar   int           `json:"total_to_par"`
	TodayToPar   int           `json:"today_to_par"`
	Thru         string        `json:"thru"`
	Position     int           `gorm:"index" json:"position"`
	Tied         bool          `json:"tied"`
	TieCount     int           `json:"tie_count"`
	RoundStrokes pq.Int64Array `gorm:"type:integer[]" json:"round_strokes"`
	TeeTime      string        `json:"tee_time"`
	StartHole    int           `json:"start_hole"`
	PrizeMoney   float64       `json:"prize_money"`
	// No column default: gorm skips defaulted zero values on insert, which
	// would make a false flag unstorable for freshly seen entrants.
	MadeCut bool    `json:"made_cut"`
	Amateur bool    `gorm:"default:false" json:"amateur"`
	Cost    float64 `json:"cost"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TournamentPlayer) TableName() string {
	return "tournament_players"
}
