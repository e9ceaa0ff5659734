package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PrizeTable is the prize distribution for one tournament: the purse broken
// into per-position tiers, plus optional official tie-split amounts for
// cases where the governing body's rounding differs from a naive average.
// Immutable once imported.
type PrizeTable struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TournamentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"tournament_id"`
	Purse        float64   `gorm:"not null" json:"purse"`
	// TieSplits maps "<position>:<tie size>" to the official per-player
	// amount for that exact tie, tie sizes 2-10.
	TieSplits datatypes.JSON `json:"tie_splits"`
	CreatedAt time.Time      `json:"created_at"`

	// Associations
	Tiers []PrizeTier `gorm:"foreignKey:PrizeTableID;constraint:OnDelete:CASCADE" json:"tiers,omitempty"`
}

// TableName specifies the table name for GORM
func (PrizeTable) TableName() string {
	return "prize_tables"
}

// PrizeTier is one finishing position's share of the purse
type PrizeTier struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PrizeTableID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_table_position,priority:1" json:"prize_table_id"`
	Position     int       `gorm:"not null;uniqueIndex:idx_table_position,priority:2" json:"position"`
	Percent      float64   `json:"percent"`
	Amount       float64   `gorm:"not null" json:"amount"`
}

// TableName specifies the table name for GORM
func (PrizeTier) TableName() string {
	return "prize_tiers"
}

// AmountFor returns the payout for a finishing position, or 0 when the
// position is beyond the paid places
func (t *PrizeTable) AmountFor(position int) float64 {
	for _, tier := range t.Tiers {
		if tier.Position == position {
			return tier.Amount
		}
	}
	return 0
}

// TieAmount returns the official per-player amount for a tie of the given
// size at the given position, when the table supplies one
func (t *PrizeTable) TieAmount(position, size int) (float64, bool) {
	if len(t.TieSplits) == 0 {
		return 0, false
	}
	var splits map[string]float64
	if err := json.Unmarshal(t.TieSplits, &splits); err != nil {
		return 0, false
	}
	amount, ok := splits[fmt.Sprintf("%d:%d", position, size)]
	return amount, ok
}
