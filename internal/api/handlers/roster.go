package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
	"github.com/Schless09/Fore-cast-sub001/pkg/utils"
)

// RosterHandler handles user rosters and season standings
type RosterHandler struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(db *database.DB, logger *logrus.Logger) *RosterHandler {
	return &RosterHandler{
		db:     db,
		logger: logger,
	}
}

// CreateRoster builds a roster from tournament entrant IDs. Rosters lock
// once the tournament goes live.
func (h *RosterHandler) CreateRoster(c *gin.Context) {
	var req struct {
		UserID       uuid.UUID   `json:"user_id" binding:"required"`
		TournamentID uuid.UUID   `json:"tournament_id" binding:"required"`
		Name         string      `json:"name"`
		EntrantIDs   []uuid.UUID `json:"entrant_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid roster payload", err.Error())
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", req.TournamentID).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}
	if tournament.Status != models.TournamentUpcoming {
		utils.SendError(c, http.StatusConflict,
			utils.NewAppError(utils.ErrCodeConflict, "Rosters lock when the tournament starts"))
		return
	}

	var entrants []models.TournamentPlayer
	err := h.db.Where("id IN ? AND tournament_id = ?", req.EntrantIDs, req.TournamentID).Find(&entrants).Error
	if err != nil || len(entrants) != len(req.EntrantIDs) {
		utils.SendValidationError(c, "One or more entrants do not belong to this tournament", "")
		return
	}

	roster := models.UserRoster{
		UserID:       req.UserID,
		TournamentID: req.TournamentID,
		Name:         req.Name,
	}
	for _, entrant := range entrants {
		roster.Players = append(roster.Players, models.RosterPlayer{
			TournamentPlayerID: entrant.ID,
			Cost:               entrant.Cost,
		})
	}
	if err := h.db.Create(&roster).Error; err != nil {
		utils.SendInternalError(c, "Failed to create roster")
		return
	}
	utils.SendCreated(c, roster)
}

// GetRoster returns one roster with its entrants
func (h *RosterHandler) GetRoster(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid roster ID", err.Error())
		return
	}

	var roster models.UserRoster
	err = h.db.Preload("Players.TournamentPlayer").Preload("Tournament").
		First(&roster, "id = ?", id).Error
	if err != nil {
		utils.SendNotFound(c, "Roster not found")
		return
	}
	utils.SendSuccess(c, roster)
}

// ListRosters returns a user's rosters, newest tournament first
func (h *RosterHandler) ListRosters(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.SendValidationError(c, "user_id query parameter is required", "")
		return
	}

	var rosters []models.UserRoster
	err = h.db.Preload("Tournament").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rosters).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch rosters")
		return
	}
	utils.SendSuccess(c, rosters)
}

// GetStandings returns the season leaderboard of users by total winnings
func (h *RosterHandler) GetStandings(c *gin.Context) {
	season, err := strconv.Atoi(c.DefaultQuery("season", strconv.Itoa(time.Now().Year())))
	if err != nil {
		utils.SendValidationError(c, "Invalid season", err.Error())
		return
	}

	var standings []models.SeasonStanding
	err = h.db.Where("season_year = ?", season).
		Order("total_winnings DESC").
		Find(&standings).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch standings")
		return
	}
	utils.SendSuccess(c, standings)
}
