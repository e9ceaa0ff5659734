package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

// WinningsPropagator pushes entrant prize money outward: roster totals are
// recomputed from entrant payouts, season standings from roster totals.
// Every derived value is a full recompute from its source of truth, never
// an increment, so propagation is idempotent and self-healing after a
// retroactive prize table correction.
type WinningsPropagator struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewWinningsPropagator creates a winnings propagator
func NewWinningsPropagator(db *database.DB, logger *logrus.Logger) *WinningsPropagator {
	return &WinningsPropagator{
		db:     db,
		logger: logger,
	}
}

// PropagateTournament recomputes every roster total for the tournament and
// then the season standings the rosters feed into
func (p *WinningsPropagator) PropagateTournament(ctx context.Context, tournament *models.Tournament) error {
	if err := p.recomputeRosterTotals(ctx, tournament.ID); err != nil {
		return err
	}
	if err := p.recomputeSeasonStandings(ctx, tournament.SeasonYear); err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"tournament": tournament.Name,
		"season":     tournament.SeasonYear,
	}).Debug("Winnings propagated")
	return nil
}

// recomputeRosterTotals sets each roster's total to the sum of its current
// entrants' prize money. A roster whose entrants all lost their payouts
// drops back to zero rather than keeping a phantom total.
func (p *WinningsPropagator) recomputeRosterTotals(ctx context.Context, tournamentID uuid.UUID) error {
	err := p.db.WithContext(ctx).Exec(`
		UPDATE user_rosters SET total_winnings = COALESCE((
			SELECT SUM(tournament_players.prize_money)
			FROM roster_players
			JOIN tournament_players ON tournament_players.id = roster_players.tournament_player_id
			WHERE roster_players.roster_id = user_rosters.id
		), 0), updated_at = ?
		WHERE tournament_id = ?`, time.Now(), tournamentID).Error
	if err != nil {
		return fmt.Errorf("failed to recompute roster totals: %w", err)
	}
	return nil
}

type seasonTotal struct {
	UserID uuid.UUID
	Total  float64
}

// recomputeSeasonStandings rebuilds every standing row for the season from
// the roster totals of that season's tournaments
func (p *WinningsPropagator) recomputeSeasonStandings(ctx context.Context, seasonYear int) error {
	var totals []seasonTotal
	err := p.db.WithContext(ctx).Table("user_rosters").
		Select("user_rosters.user_id AS user_id, SUM(user_rosters.total_winnings) AS total").
		Joins("JOIN tournaments ON tournaments.id = user_rosters.tournament_id").
		Where("tournaments.season_year = ?", seasonYear).
		Group("user_rosters.user_id").
		Scan(&totals).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate season totals: %w", err)
	}

	for _, t := range totals {
		standing := models.SeasonStanding{
			ID:            uuid.New(),
			UserID:        t.UserID,
			SeasonYear:    seasonYear,
			TotalWinnings: t.Total,
			UpdatedAt:     time.Now(),
		}
		err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "season_year"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_winnings", "updated_at"}),
		}).Create(&standing).Error
		if err != nil {
			return fmt.Errorf("failed to upsert season standing: %w", err)
		}
	}
	return nil
}
