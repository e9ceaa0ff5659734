package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/api/handlers"
	"github.com/Schless09/Fore-cast-sub001/internal/scoring"
	"github.com/Schless09/Fore-cast-sub001/internal/services"
	"github.com/Schless09/Fore-cast-sub001/pkg/config"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(
	group *gin.RouterGroup,
	db *database.DB,
	redisClient *redis.Client,
	cache *services.CacheService,
	snapshots *services.SnapshotCache,
	syncService *services.SyncService,
	cfg *config.Config,
	logger *logrus.Logger,
) {
	curve := scoring.DefaultPriceCurve()
	curve.MinCost = cfg.MinPlayerCost
	curve.MaxCost = cfg.MaxPlayerCost

	tournamentHandler := handlers.NewTournamentHandler(db, cache, snapshots, syncService, logger)
	prizeHandler := handlers.NewPrizeHandler(db, curve, logger)
	playerHandler := handlers.NewPlayerHandler(db, logger)
	rosterHandler := handlers.NewRosterHandler(db, logger)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	group.GET("/health", healthHandler.GetHealth)
	group.GET("/ready", healthHandler.GetReady)

	// Tournament endpoints
	group.GET("/tournaments", tournamentHandler.ListTournaments)
	group.POST("/tournaments", tournamentHandler.CreateTournament)
	group.GET("/tournaments/:id", tournamentHandler.GetTournament)
	group.GET("/tournaments/:id/leaderboard", tournamentHandler.GetLeaderboard)
	// Admin endpoints for data control (should be protected in production)
	group.POST("/tournaments/:id/sync", tournamentHandler.SyncTournament)
	group.POST("/tournaments/:id/winnings", tournamentHandler.RecomputeWinnings)

	// Prize table and pricing endpoints
	group.GET("/tournaments/:id/prizes", prizeHandler.GetPrizeTable)
	group.POST("/tournaments/:id/prizes", prizeHandler.ImportPrizeTable)
	group.POST("/tournaments/:id/odds", prizeHandler.ImportOdds)

	// Player registry endpoints
	group.GET("/players", playerHandler.ListPlayers)
	group.POST("/players", playerHandler.CreatePlayer)
	group.POST("/players/:id/aliases", playerHandler.AddAlias)

	// Roster and standings endpoints
	group.GET("/rosters", rosterHandler.ListRosters)
	group.POST("/rosters", rosterHandler.CreateRoster)
	group.GET("/rosters/:id", rosterHandler.GetRoster)
	group.GET("/standings", rosterHandler.GetStandings)
}
