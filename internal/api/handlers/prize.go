package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/internal/scoring"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
	"github.com/Schless09/Fore-cast-sub001/pkg/utils"
)

// PrizeHandler handles prize table imports and odds-based pricing
type PrizeHandler struct {
	db     *database.DB
	curve  scoring.PriceCurve
	logger *logrus.Logger
}

// NewPrizeHandler creates a new prize handler
func NewPrizeHandler(db *database.DB, curve scoring.PriceCurve, logger *logrus.Logger) *PrizeHandler {
	return &PrizeHandler{
		db:     db,
		curve:  curve,
		logger: logger,
	}
}

type prizeTierRequest struct {
	Position int     `json:"position" binding:"required"`
	Percent  float64 `json:"percent"`
	Amount   float64 `json:"amount" binding:"required"`
}

type prizeTableRequest struct {
	Purse float64            `json:"purse" binding:"required"`
	Tiers []prizeTierRequest `json:"tiers" binding:"required,min=1"`
	// TieSplits maps "<position>:<size>" to the official per-player amount
	TieSplits map[string]float64 `json:"tie_splits"`
}

// ImportPrizeTable stores the prize distribution for a tournament. Prize
// tables are immutable; re-importing replaces the table wholesale so a
// correction is a fresh import, not an edit.
func (h *PrizeHandler) ImportPrizeTable(c *gin.Context) {
	tournamentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var req prizeTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid prize table payload", err.Error())
		return
	}
	if err := validateTiers(req.Tiers); err != nil {
		utils.SendValidationError(c, "Invalid prize tiers", err.Error())
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}

	table := models.PrizeTable{
		TournamentID: tournamentID,
		Purse:        req.Purse,
	}
	if len(req.TieSplits) > 0 {
		raw, err := json.Marshal(req.TieSplits)
		if err != nil {
			utils.SendValidationError(c, "Invalid tie splits", err.Error())
			return
		}
		table.TieSplits = datatypes.JSON(raw)
	}
	for _, tier := range req.Tiers {
		table.Tiers = append(table.Tiers, models.PrizeTier{
			Position: tier.Position,
			Percent:  tier.Percent,
			Amount:   tier.Amount,
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&models.PrizeTable{}).Error; err != nil {
			return err
		}
		return tx.Create(&table).Error
	})
	if err != nil {
		h.logger.Errorf("Failed to import prize table: %v", err)
		utils.SendInternalError(c, "Failed to import prize table")
		return
	}

	utils.SendCreated(c, table)
}

// GetPrizeTable returns the imported prize distribution
func (h *PrizeHandler) GetPrizeTable(c *gin.Context) {
	tournamentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var table models.PrizeTable
	err = h.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("tournament_id = ?", tournamentID).First(&table).Error
	if err != nil {
		utils.SendNotFound(c, "No prize table for this tournament")
		return
	}
	utils.SendSuccess(c, table)
}

type oddsEntry struct {
	Player string `json:"player" binding:"required"`
	Odds   int    `json:"odds" binding:"required"`
}

type oddsImportRequest struct {
	Entries []oddsEntry `json:"entries" binding:"required,min=1"`
}

// ImportOdds prices tournament entrants from outright-winner odds. Names
// must match entrant rows; unmatched names are reported, not guessed.
func (h *PrizeHandler) ImportOdds(c *gin.Context) {
	tournamentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var req oddsImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid odds payload", err.Error())
		return
	}

	priced := 0
	var unmatched []string
	for _, entry := range req.Entries {
		cost := h.curve.CostFromOdds(entry.Odds)
		result := h.db.Model(&models.TournamentPlayer{}).
			Where("tournament_id = ? AND name = ?", tournamentID, entry.Player).
			Update("cost", cost)
		if result.Error != nil {
			utils.SendInternalError(c, "Failed to update player costs")
			return
		}
		if result.RowsAffected == 0 {
			unmatched = append(unmatched, entry.Player)
			continue
		}
		priced++
	}

	utils.SendSuccess(c, gin.H{
		"priced":    priced,
		"unmatched": unmatched,
	})
}

func validateTiers(tiers []prizeTierRequest) error {
	seen := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Position <= 0 {
			return fmt.Errorf("tier position %d must be positive", tier.Position)
		}
		if tier.Amount < 0 {
			return fmt.Errorf("tier amount for position %d must not be negative", tier.Position)
		}
		if seen[tier.Position] {
			return fmt.Errorf("duplicate tier position %d", tier.Position)
		}
		seen[tier.Position] = true
	}
	return nil
}
