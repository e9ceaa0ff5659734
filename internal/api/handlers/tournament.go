package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/internal/services"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
	"github.com/Schless09/Fore-cast-sub001/pkg/utils"
)

// TournamentHandler handles tournament and leaderboard endpoints
type TournamentHandler struct {
	db        *database.DB
	cache     *services.CacheService
	snapshots *services.SnapshotCache
	sync      *services.SyncService
	logger    *logrus.Logger
}

// NewTournamentHandler creates a new tournament handler
func NewTournamentHandler(
	db *database.DB,
	cache *services.CacheService,
	snapshots *services.SnapshotCache,
	syncService *services.SyncService,
	logger *logrus.Logger,
) *TournamentHandler {
	return &TournamentHandler{
		db:        db,
		cache:     cache,
		snapshots: snapshots,
		sync:      syncService,
		logger:    logger,
	}
}

// ListTournaments returns tournaments, newest first
func (h *TournamentHandler) ListTournaments(c *gin.Context) {
	status := c.Query("status")
	season, _ := strconv.Atoi(c.Query("season"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	query := h.db.Model(&models.Tournament{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if season > 0 {
		query = query.Where("season_year = ?", season)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.SendInternalError(c, "Failed to count tournaments")
		return
	}

	var tournaments []models.Tournament
	err := query.Order("start_date DESC").Limit(limit).Offset(offset).Find(&tournaments).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch tournaments")
		return
	}

	utils.SendSuccessWithMeta(c, tournaments, &utils.Meta{
		Page:    offset/max(limit, 1) + 1,
		PerPage: limit,
		Total:   total,
	})
}

// GetTournament returns one tournament
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", id).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}
	utils.SendSuccess(c, tournament)
}

// leaderboardResponse is the payload for the leaderboard endpoint
type leaderboardResponse struct {
	Tournament models.Tournament         `json:"tournament"`
	Entrants   []models.TournamentPlayer `json:"entrants"`
	Degraded   bool                      `json:"degraded"`
	DataAge    string                    `json:"data_age,omitempty"`
}

// GetLeaderboard returns the current standings for a tournament. The
// degraded flag tells clients the rows were last built from a stale
// snapshot because the provider was unreachable.
func (h *TournamentHandler) GetLeaderboard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	cacheKey := services.LeaderboardCacheKey(id.String())
	var cached leaderboardResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
		utils.SendSuccess(c, cached)
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", id).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}

	var entrants []models.TournamentPlayer
	err = h.db.Where("tournament_id = ?", id).
		Order("CASE WHEN position = 0 THEN 1 ELSE 0 END, position ASC, total_to_par ASC").
		Find(&entrants).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch leaderboard")
		return
	}

	response := leaderboardResponse{
		Tournament: tournament,
		Entrants:   entrants,
	}
	if snapshot, freshness, err := h.snapshots.Get(c.Request.Context(), tournament.SeasonYear, tournament.ExternalEventID); err == nil && freshness != services.SnapshotMissing {
		response.DataAge = h.snapshots.Age(snapshot).Round(time.Second).String()
		response.Degraded = freshness == services.SnapshotStale && tournament.IsLive()
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, response, 30*time.Second); err != nil {
		h.logger.Warnf("Failed to cache leaderboard response: %v", err)
	}
	utils.SendSuccess(c, response)
}

// SyncTournament triggers a reconciliation run. ?force=true bypasses the
// polling window gate.
func (h *TournamentHandler) SyncTournament(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", id).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}

	force := c.Query("force") == "true"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.sync.SyncTournament(ctx, &tournament, force)
	if err != nil {
		h.logger.WithField("tournament", tournament.Name).Errorf("Sync failed: %v", err)
		utils.SendError(c, http.StatusBadGateway,
			utils.NewAppError(utils.ErrCodeUnavailable, "Sync failed", err.Error()))
		return
	}
	utils.SendSuccess(c, result)
}

// RecomputeWinnings reprices entrants from the imported prize table and
// pushes the results through roster totals and season standings
func (h *TournamentHandler) RecomputeWinnings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var tournament models.Tournament
	if err := h.db.First(&tournament, "id = ?", id).Error; err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}

	if err := h.sync.RecomputeWinnings(c.Request.Context(), &tournament); err != nil {
		if errors.Is(err, services.ErrNoPrizeTable) {
			utils.SendValidationError(c, "No prize table imported for this tournament", "")
			return
		}
		utils.SendInternalError(c, "Failed to recompute winnings")
		return
	}
	utils.SendSuccess(c, gin.H{"recomputed": true})
}

// CreateTournament registers a tournament to track
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	var req struct {
		Name            string    `json:"name" binding:"required"`
		StartDate       time.Time `json:"start_date" binding:"required"`
		EndDate         time.Time `json:"end_date" binding:"required"`
		ExternalEventID string    `json:"external_event_id" binding:"required"`
		Provider        string    `json:"provider"`
		SeasonYear      int       `json:"season_year" binding:"required"`
		Timezone        string    `json:"timezone"`
		CourseName      string    `json:"course_name"`
		Purse           float64   `json:"purse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid tournament payload", err.Error())
		return
	}

	tournament := models.Tournament{
		Name:            req.Name,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          models.TournamentUpcoming,
		ExternalEventID: req.ExternalEventID,
		Provider:        req.Provider,
		SeasonYear:      req.SeasonYear,
		Timezone:        req.Timezone,
		CourseName:      req.CourseName,
		Purse:           req.Purse,
	}
	if err := h.db.Create(&tournament).Error; err != nil {
		utils.SendConflict(c, "Tournament already exists")
		return
	}
	utils.SendCreated(c, tournament)
}
