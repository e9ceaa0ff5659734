package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/identity"
	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
	"github.com/Schless09/Fore-cast-sub001/pkg/utils"
)

// PlayerHandler handles the player registry and its alias table
type PlayerHandler struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(db *database.DB, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		db:     db,
		logger: logger,
	}
}

// ListPlayers returns the registry, optionally filtered by name substring
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	query := h.db.Model(&models.PGAPlayer{})
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+identity.NormalizeName(name)+"%")
	}

	var players []models.PGAPlayer
	if err := query.Order("name ASC").Find(&players).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch players")
		return
	}
	utils.SendSuccess(c, players)
}

// CreatePlayer registers a player
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req struct {
		Name     string   `json:"name" binding:"required"`
		Country  string   `json:"country"`
		Aliases  []string `json:"aliases"`
		OwgrRank int      `json:"owgr_rank"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid player payload", err.Error())
		return
	}

	player := models.PGAPlayer{
		Name:     req.Name,
		Country:  req.Country,
		Aliases:  pq.StringArray(req.Aliases),
		OwgrRank: req.OwgrRank,
	}
	if err := h.db.Create(&player).Error; err != nil {
		utils.SendConflict(c, "Player already exists")
		return
	}
	utils.SendCreated(c, player)
}

// AddAlias appends a provider spelling to a player's alias list. The next
// sync rebuilds its resolver from the registry, so the alias takes effect
// without a restart.
func (h *PlayerHandler) AddAlias(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid player ID", err.Error())
		return
	}

	var req struct {
		Alias string `json:"alias" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid alias payload", err.Error())
		return
	}

	var player models.PGAPlayer
	if err := h.db.First(&player, "id = ?", id).Error; err != nil {
		utils.SendNotFound(c, "Player not found")
		return
	}

	normalized := identity.NormalizeName(req.Alias)
	for _, existing := range player.Aliases {
		if identity.NormalizeName(existing) == normalized {
			utils.SendSuccess(c, player)
			return
		}
	}

	player.Aliases = append(player.Aliases, req.Alias)
	if err := h.db.Model(&player).Update("aliases", player.Aliases).Error; err != nil {
		utils.SendInternalError(c, "Failed to save alias")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"player": player.Name,
		"alias":  req.Alias,
	}).Info("Alias added")
	utils.SendSuccess(c, player)
}
