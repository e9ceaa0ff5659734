package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/pkg/config"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Enable UUID extension for PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Auto migrate all models
	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.PGAPlayer{},
		&models.TournamentPlayer{},
		&models.PrizeTable{},
		&models.PrizeTier{},
		&models.UserRoster{},
		&models.RosterPlayer{},
		&models.SeasonStanding{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_tournament_players_prize ON tournament_players(tournament_id, prize_money DESC)",
		"CREATE INDEX IF NOT EXISTS idx_user_rosters_user_tournament ON user_rosters(user_id, tournament_id)",
		"CREATE INDEX IF NOT EXISTS idx_season_standings_rank ON season_standings(season_year, total_winnings DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"season_standings",
		"roster_players",
		"user_rosters",
		"prize_tiers",
		"prize_tables",
		"tournament_players",
		"pga_players",
		"tournaments",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	// Seed the player registry with known provider alias spellings
	players := []models.PGAPlayer{
		{Name: "Scottie Scheffler", Country: "USA", OwgrRank: 1},
		{Name: "Rory McIlroy", Country: "NIR", OwgrRank: 2},
		{Name: "Ludvig Åberg", Country: "SWE", OwgrRank: 5, Aliases: pq.StringArray{"Ludvig Aberg"}},
		{Name: "Nicolas Echavarria", Country: "COL", Aliases: pq.StringArray{"Nico Echavarria"}},
		{Name: "Matthias Schmid", Country: "GER", Aliases: pq.StringArray{"Matti Schmid"}},
		{Name: "Seung Taek Kim", Country: "KOR", Aliases: pq.StringArray{"S.T. Kim", "ST Kim"}},
		{Name: "Cameron Young", Country: "USA"},
		{Name: "Min Woo Lee", Country: "AUS"},
		{Name: "Collin Morikawa", Country: "USA"},
		{Name: "Tommy Fleetwood", Country: "ENG"},
	}
	if err := db.Create(&players).Error; err != nil {
		return fmt.Errorf("failed to seed players: %w", err)
	}
	logrus.Infof("Seeded %d players", len(players))

	// Create a sample tournament starting Thursday of next week
	start := nextThursday(time.Now())
	tournament := &models.Tournament{
		Name:            "Sample Invitational",
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, 3),
		Status:          models.TournamentUpcoming,
		ExternalEventID: "014",
		Provider:        "livegolf",
		SeasonYear:      start.Year(),
		Timezone:        "America/New_York",
		CourseName:      "Sample Country Club",
		Purse:           20000000,
	}
	if err := db.Create(tournament).Error; err != nil {
		return fmt.Errorf("failed to seed tournament: %w", err)
	}

	// Prize table: top-10 positions with an official 2-way tie split at 1st
	table := &models.PrizeTable{
		TournamentID: tournament.ID,
		Purse:        tournament.Purse,
		TieSplits:    datatypes.JSON([]byte(`{"1:2": 2880000}`)),
	}
	amounts := []float64{3600000, 2160000, 1360000, 960000, 800000, 707500, 658750, 610000, 570000, 530000}
	for i, amount := range amounts {
		table.Tiers = append(table.Tiers, models.PrizeTier{
			Position: i + 1,
			Percent:  amount / tournament.Purse * 100,
			Amount:   amount,
		})
	}
	if err := db.Create(table).Error; err != nil {
		return fmt.Errorf("failed to seed prize table: %w", err)
	}
	logrus.Infof("Seeded tournament %s with a %d-position prize table", tournament.Name, len(amounts))

	return nil
}

func nextThursday(from time.Time) time.Time {
	d := from
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 7, 0, 0, 0, time.UTC)
}
