package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/Schless09/Fore-cast-sub001/internal/identity"
	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/internal/providers"
	"github.com/Schless09/Fore-cast-sub001/internal/scoring"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

// SyncResult summarizes one reconciliation run for logs and the API
type SyncResult struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Polled       bool      `json:"polled"`
	Source       string    `json:"source,omitempty"`
	Degraded     bool      `json:"degraded"`
	SnapshotAge  string    `json:"snapshot_age,omitempty"`
	Entrants     int       `json:"entrants"`
	Matched      int       `json:"matched"`
	Reason       string    `json:"reason,omitempty"`
}

// Where a sync's leaderboard came from
const (
	sourceLive       = "live"
	sourceFreshCache = "fresh_cache"
	sourceStaleCache = "stale_cache"
)

// cacheInvalidator is the slice of the cache component the sync service
// touches. *CacheService satisfies it.
type cacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// SyncService runs the leaderboard reconciliation pipeline: provider fetch,
// snapshot caching, identity resolution, position and prize computation,
// and entrant persistence. Every run is a full recompute over the snapshot,
// so a sync can be repeated or forced at any time without drift.
type SyncService struct {
	db            *database.DB
	provider      providers.LeaderboardProvider
	snapshots     *SnapshotCache
	cache         cacheInvalidator
	winnings      *WinningsPropagator
	logger        *logrus.Logger
	batchSize     int
	unrosteredCap int
}

// NewSyncService creates a sync service
func NewSyncService(
	db *database.DB,
	provider providers.LeaderboardProvider,
	snapshots *SnapshotCache,
	cache cacheInvalidator,
	winnings *WinningsPropagator,
	logger *logrus.Logger,
	batchSize int,
	unrosteredCap int,
) *SyncService {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &SyncService{
		db:            db,
		provider:      provider,
		snapshots:     snapshots,
		cache:         cache,
		winnings:      winnings,
		logger:        logger,
		batchSize:     batchSize,
		unrosteredCap: unrosteredCap,
	}
}

// SyncTournament reconciles one tournament against its provider. When force
// is false the polling window gate decides whether the external request is
// spent at all; force bypasses the gate but not the provider's own budget.
func (s *SyncService) SyncTournament(ctx context.Context, tournament *models.Tournament, force bool) (*SyncResult, error) {
	result := &SyncResult{TournamentID: tournament.ID}

	if !force {
		decision := ShouldPoll(time.Now(), tournament)
		if !decision.Poll {
			result.Reason = decision.Reason
			s.logger.WithFields(logrus.Fields{
				"tournament": tournament.Name,
				"reason":     decision.Reason,
				"next_check": decision.NextCheckMinutes,
			}).Debug("Skipping sync")
			return result, nil
		}
	}
	result.Polled = true

	snapshot, source, err := s.fetchSnapshot(ctx, tournament)
	if err != nil {
		return nil, err
	}
	result.Source = source
	if source == sourceStaleCache {
		result.Degraded = true
		result.SnapshotAge = s.snapshots.Age(snapshot).Round(time.Second).String()
	}
	result.Entrants = len(snapshot.Scores)

	matched, err := s.applySnapshot(ctx, tournament, snapshot)
	if err != nil {
		return nil, err
	}
	result.Matched = matched

	// Winnings feed roster totals and season standings; propagate after
	// every applied snapshot so derived values never lag the leaderboard.
	if s.winnings != nil {
		if err := s.winnings.PropagateTournament(ctx, tournament); err != nil {
			s.logger.WithField("tournament", tournament.Name).Warnf("Winnings propagation failed: %v", err)
		}
	}

	// Reads rebuild the response from entrant rows, so drop the cached copy
	if err := s.cache.Delete(ctx, LeaderboardCacheKey(tournament.ID.String())); err != nil {
		s.logger.Warnf("Failed to invalidate leaderboard cache: %v", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tournament": tournament.Name,
		"source":     result.Source,
		"entrants":   result.Entrants,
		"matched":    result.Matched,
	}).Info("Tournament sync completed")
	return result, nil
}

// ErrNoPrizeTable is returned when winnings are requested for a tournament
// without an imported prize distribution
var ErrNoPrizeTable = fmt.Errorf("no prize table imported for tournament")

// RecomputeWinnings reprices every stored entrant from the prize table and
// current standings, without touching the provider. Used after a prize
// table import or correction.
func (s *SyncService) RecomputeWinnings(ctx context.Context, tournament *models.Tournament) error {
	var table models.PrizeTable
	err := s.db.Preload("Tiers").Where("tournament_id = ?", tournament.ID).First(&table).Error
	if err != nil {
		return ErrNoPrizeTable
	}

	var entrants []models.TournamentPlayer
	if err := s.db.Where("tournament_id = ?", tournament.ID).Find(&entrants).Error; err != nil {
		return fmt.Errorf("failed to load entrants: %w", err)
	}

	// Stored positions rank the full field for display, so the paid
	// population is re-derived here: only entrants who have begun play and
	// survived the cut re-rank into the money. Everyone else drops to zero.
	field := make([]providers.CanonicalPlayerScore, 0, len(entrants))
	for _, e := range entrants {
		thru := providers.ClassifyThru(e.Thru)
		if !e.MadeCut || thru.State == providers.ThruNotStarted {
			continue
		}
		field = append(field, providers.CanonicalPlayerScore{
			PlayerName: e.Name,
			TotalToPar: e.TotalToPar,
			TodayToPar: e.TodayToPar,
			Thru:       thru,
			Amateur:    e.Amateur,
		})
	}

	payouts := map[string]float64{}
	for _, p := range scoring.CalculateWinnings(scoring.AssignPositions(field), &table) {
		payouts[p.PlayerName] = p.Amount
	}

	for _, e := range entrants {
		err := s.db.WithContext(ctx).Model(&models.TournamentPlayer{}).
			Where("tournament_id = ? AND name = ?", tournament.ID, e.Name).
			Update("prize_money", payouts[e.Name]).Error
		if err != nil {
			return fmt.Errorf("failed to update prize money: %w", err)
		}
	}

	if s.winnings != nil {
		return s.winnings.PropagateTournament(ctx, tournament)
	}
	return nil
}

// fetchSnapshot resolves the leaderboard to apply: a cached snapshot still
// within its TTL answers without spending a provider request, otherwise a
// live fetch runs, and a stale cached copy of any age backs a failed fetch.
func (s *SyncService) fetchSnapshot(ctx context.Context, tournament *models.Tournament) (*providers.LeaderboardSnapshot, string, error) {
	cached, freshness, cacheErr := s.snapshots.Get(ctx, tournament.SeasonYear, tournament.ExternalEventID)
	if cacheErr != nil {
		s.logger.Warnf("Snapshot cache read failed: %v", cacheErr)
	}
	if freshness == SnapshotFresh {
		return cached, sourceFreshCache, nil
	}

	snapshot, err := s.provider.FetchLeaderboard(ctx, tournament.ExternalEventID, tournament.SeasonYear)
	if err == nil {
		if cacheErr := s.snapshots.Put(ctx, snapshot); cacheErr != nil {
			s.logger.Warnf("Failed to cache snapshot: %v", cacheErr)
		}
		return snapshot, sourceLive, nil
	}

	s.logger.WithFields(logrus.Fields{
		"tournament": tournament.Name,
		"provider":   s.provider.Name(),
	}).Warnf("Live fetch failed, falling back to cached snapshot: %v", err)

	if freshness != SnapshotStale {
		return nil, "", fmt.Errorf("provider fetch failed and no cached snapshot exists: %w", err)
	}
	return cached, sourceStaleCache, nil
}

// applySnapshot runs the recompute: ranks the field, prices out winnings,
// resolves identities, and upserts entrant rows. Returns how many entrants
// resolved to a known player.
func (s *SyncService) applySnapshot(ctx context.Context, tournament *models.Tournament, snapshot *providers.LeaderboardSnapshot) (int, error) {
	if err := s.transitionStatus(tournament, snapshot); err != nil {
		return 0, err
	}

	ranked := scoring.AssignPositions(snapshot.Scores)

	// Money is computed over entrants who have begun play and survived the
	// cut, so a provider that ranks the whole field never pre-pays a waiting
	// entrant and never pays one who is out of the tournament.
	payouts := map[string]float64{}
	var table models.PrizeTable
	err := s.db.Preload("Tiers").Where("tournament_id = ?", tournament.ID).First(&table).Error
	if err == nil {
		eligible := scoring.AssignPositions(scoring.PrizeEligible(snapshot.Scores))
		for _, p := range scoring.CalculateWinnings(eligible, &table) {
			payouts[p.PlayerName] = p.Amount
		}
	}

	resolver, err := s.buildResolver()
	if err != nil {
		return 0, err
	}

	records := make([]models.TournamentPlayer, 0, len(ranked))
	matched := 0
	for _, r := range ranked {
		record := models.TournamentPlayer{
			TournamentID: tournament.ID,
			Name:         r.PlayerName,
			TotalToPar:   r.TotalToPar,
			TodayToPar:   r.TodayToPar,
			Thru:         r.Thru.String(),
			Position:     r.Position,
			Tied:         r.TieCount > 1,
			TieCount:     r.TieCount,
			RoundStrokes: toInt64Array(r.RoundStrokes),
			TeeTime:      r.TeeTime,
			StartHole:    r.StartHole,
			PrizeMoney:   payouts[r.PlayerName],
			MadeCut:      r.MadeCut(),
			Amateur:      r.Amateur,
		}
		if id, ok := resolver.Resolve(r.PlayerName); ok {
			record.PGAPlayerID = &id
			matched++
		} else {
			s.logger.WithField("player", r.PlayerName).Debug("Entrant did not resolve to a known player")
		}
		records = append(records, record)
	}

	rostered, unrostered, err := s.partitionByRoster(tournament.ID, records)
	if err != nil {
		return 0, err
	}
	if s.unrosteredCap > 0 && len(unrostered) > s.unrosteredCap {
		unrostered = unrostered[:s.unrosteredCap]
	}

	// Rostered entrants land first so user-facing totals are never the
	// rows waiting behind a long tail of unrostered field players.
	if err := s.upsertEntrants(ctx, rostered); err != nil {
		return matched, err
	}
	if err := s.upsertEntrants(ctx, unrostered); err != nil {
		return matched, err
	}
	return matched, nil
}

// transitionStatus moves the tournament through its lifecycle based on what
// the provider reports, and records the current round
func (s *SyncService) transitionStatus(tournament *models.Tournament, snapshot *providers.LeaderboardSnapshot) error {
	updates := map[string]interface{}{}

	switch snapshot.Status {
	case "active":
		if tournament.Status == models.TournamentUpcoming {
			tournament.Status = models.TournamentActive
			updates["status"] = models.TournamentActive
		}
	case "completed":
		if tournament.Status != models.TournamentCompleted {
			tournament.Status = models.TournamentCompleted
			updates["status"] = models.TournamentCompleted
		}
	}
	if snapshot.CurrentRound > 0 && snapshot.CurrentRound != tournament.CurrentRound {
		tournament.CurrentRound = snapshot.CurrentRound
		updates["current_round"] = snapshot.CurrentRound
	}

	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(tournament).Updates(updates).Error
}

// buildResolver loads the player registry fresh so aliases added since the
// last sync take effect immediately
func (s *SyncService) buildResolver() (*identity.Resolver, error) {
	var players []models.PGAPlayer
	if err := s.db.Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to load player registry: %w", err)
	}
	return identity.NewResolver(players, s.logger), nil
}

// partitionByRoster splits entrant records into those on at least one user
// roster for this tournament and the rest of the field
func (s *SyncService) partitionByRoster(tournamentID uuid.UUID, records []models.TournamentPlayer) (rostered, unrostered []models.TournamentPlayer, err error) {
	var names []string
	err = s.db.Table("tournament_players").
		Select("tournament_players.name").
		Joins("JOIN roster_players ON roster_players.tournament_player_id = tournament_players.id").
		Joins("JOIN user_rosters ON user_rosters.id = roster_players.roster_id").
		Where("user_rosters.tournament_id = ?", tournamentID).
		Scan(&names).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rostered entrants: %w", err)
	}

	onRoster := make(map[string]bool, len(names))
	for _, n := range names {
		onRoster[n] = true
	}
	for _, r := range records {
		if onRoster[r.Name] {
			rostered = append(rostered, r)
		} else {
			unrostered = append(unrostered, r)
		}
	}
	return rostered, unrostered, nil
}

// upsertEntrants writes entrant rows in concurrent bounded batches, keyed
// on (tournament, name) so repeated syncs overwrite rather than duplicate
func (s *SyncService) upsertEntrants(ctx context.Context, records []models.TournamentPlayer) error {
	if len(records) == 0 {
		return nil
	}

	batches := batchRecords(records, s.batchSize)
	var wg sync.WaitGroup
	errs := make(chan error, len(batches))

	for _, batch := range batches {
		wg.Add(1)
		go func(batch []models.TournamentPlayer) {
			defer wg.Done()
			if err := s.upsertBatch(ctx, batch); err != nil {
				errs <- err
			}
		}(batch)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

func (s *SyncService) upsertBatch(ctx context.Context, batch []models.TournamentPlayer) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tournament_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pga_player_id", "total_to_par", "today_to_par", "thru",
			"position", "tied", "tie_count", "round_strokes", "tee_time",
			"start_hole", "prize_money", "made_cut", "amateur", "updated_at",
		}),
	}).Create(&batch).Error
	if err != nil {
		return fmt.Errorf("failed to upsert entrant batch: %w", err)
	}
	return nil
}

// batchRecords splits records into slices of at most size elements
func batchRecords(records []models.TournamentPlayer, size int) [][]models.TournamentPlayer {
	if size <= 0 {
		size = len(records)
	}
	var batches [][]models.TournamentPlayer
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

func toInt64Array(values []int) pq.Int64Array {
	out := make(pq.Int64Array, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
