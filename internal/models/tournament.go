package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus represents the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

// Tournament represents a PGA Tour event tracked by the app
type Tournament struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string           `gorm:"not null" json:"name"`
	StartDate       time.Time        `gorm:"not null;index" json:"start_date"`
	EndDate         time.Time        `gorm:"not null" json:"end_date"`
	Status          TournamentStatus `gorm:"type:varchar(20);default:'upcoming';index" json:"status"`
	ExternalEventID string           `gorm:"index" json:"external_event_id"`
	Provider        string           `gorm:"type:varchar(20)" json:"provider"`
	CurrentRound    int              `gorm:"default:0" json:"current_round"`
	SeasonYear      int              `gorm:"not null;index" json:"season_year"`
	Timezone        string           `gorm:"default:'America/New_York'" json:"timezone"`
	CourseName      string           `json:"course_name"`
	Purse           float64          `json:"purse"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// Associations
	Players []TournamentPlayer `gorm:"foreignKey:TournamentID" json:"players,omitempty"`
}

// TableName specifies the table name for GORM
func (Tournament) TableName() string {
	return "tournaments"
}

// IsLive reports whether live polling is meaningful for this tournament
func (t *Tournament) IsLive() bool {
	return t.Status == TournamentActive
}

// Location resolves the event time zone, falling back to Eastern
func (t *Tournament) Location() *time.Location {
	if t.Timezone != "" {
		if loc, err := time.LoadLocation(t.Timezone); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
