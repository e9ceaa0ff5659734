package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/internal/providers"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

// fakeProvider serves a canned snapshot or a canned failure
type fakeProvider struct {
	snapshot *providers.LeaderboardSnapshot
	err      error
	calls    int
}

func (f *fakeProvider) Name() providers.ProviderName {
	return providers.ProviderLiveGolf
}

func (f *fakeProvider) FetchLeaderboard(_ context.Context, eventID string, season int) (*providers.LeaderboardSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	snapshot := *f.snapshot
	snapshot.EventID = eventID
	snapshot.Season = season
	snapshot.FetchedAt = time.Now()
	return &snapshot, nil
}

type fakeInvalidator struct {
	deleted []string
}

func (f *fakeInvalidator) Delete(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newTestSync(db *database.DB, provider providers.LeaderboardProvider, store *fakeStore, invalidator *fakeInvalidator) *SyncService {
	log := testLogger()
	snapshots := NewSnapshotCache(store, 5*time.Minute, log)
	winnings := NewWinningsPropagator(db, log)
	return NewSyncService(db, provider, snapshots, invalidator, winnings, log, 2, 0)
}

func seedPlayer(t *testing.T, db *database.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO pga_players (id, name) VALUES (?, ?)`, id, name,
	).Error)
	return id
}

func seedPrizeTable(t *testing.T, db *database.DB, tournamentID uuid.UUID, amounts ...float64) {
	t.Helper()
	tableID := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO prize_tables (id, tournament_id, purse) VALUES (?, ?, ?)`,
		tableID, tournamentID, 2000.0,
	).Error)
	for i, amount := range amounts {
		require.NoError(t, db.Exec(
			`INSERT INTO prize_tiers (id, prize_table_id, position, amount) VALUES (?, ?, ?, ?)`,
			uuid.New(), tableID, i+1, amount,
		).Error)
	}
}

func playing(name string, total int) providers.CanonicalPlayerScore {
	return providers.CanonicalPlayerScore{
		PlayerName: name,
		TotalToPar: total,
		Thru:       providers.Thru{State: providers.ThruPlaying, Holes: 12},
	}
}

func entrantRow(t *testing.T, db *database.DB, tournamentID uuid.UUID, name string) models.TournamentPlayer {
	t.Helper()
	var entrant models.TournamentPlayer
	require.NoError(t, db.First(&entrant, "tournament_id = ? AND name = ?", tournamentID, name).Error)
	return entrant
}

func TestSyncTournament_LiveFetch(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	tournament.ExternalEventID = "014"
	scottieID := seedPlayer(t, db, "Scottie Scheffler")
	seedPlayer(t, db, "Rory McIlroy")
	seedPrizeTable(t, db, tournament.ID, 1000, 600, 400)

	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status:       "active",
		CurrentRound: 2,
		Scores: []providers.CanonicalPlayerScore{
			playing("Scottie Scheffler", -10),
			playing("Rory McIlroy", -10),
			playing("Min Woo Lee", -8),
		},
	}}
	store := newFakeStore()
	invalidator := &fakeInvalidator{}
	syncService := newTestSync(db, provider, store, invalidator)

	result, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	assert.True(t, result.Polled)
	assert.Equal(t, "live", result.Source)
	assert.False(t, result.Degraded)
	assert.Equal(t, 3, result.Entrants)
	assert.Equal(t, 2, result.Matched)

	// T1 convention plus tie split: 1000+600 shared across the pair
	scottie := entrantRow(t, db, tournament.ID, "Scottie Scheffler")
	assert.Equal(t, 1, scottie.Position)
	assert.True(t, scottie.Tied)
	assert.Equal(t, 800.0, scottie.PrizeMoney)
	require.NotNil(t, scottie.PGAPlayerID)
	assert.Equal(t, scottieID, *scottie.PGAPlayerID)

	third := entrantRow(t, db, tournament.ID, "Min Woo Lee")
	assert.Equal(t, 3, third.Position)
	assert.Equal(t, 400.0, third.PrizeMoney)
	assert.Nil(t, third.PGAPlayerID)

	// snapshot cached for the degraded path, API cache invalidated
	_, ok := store.data[SnapshotCacheKey(2025, "014")]
	assert.True(t, ok)
	assert.Contains(t, invalidator.deleted, LeaderboardCacheKey(tournament.ID.String()))
}

func TestSyncTournament_RepeatedRunsConverge(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	seedPrizeTable(t, db, tournament.ID, 1000)

	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status: "active",
		Scores: []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -5)},
	}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	for i := 0; i < 3; i++ {
		_, err := syncService.SyncTournament(context.Background(), tournament, true)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.TournamentPlayer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1000.0, entrantRow(t, db, tournament.ID, "Scottie Scheffler").PrizeMoney)
}

func TestSyncTournament_NotStartedEarnNothing(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	seedPrizeTable(t, db, tournament.ID, 1000, 600)

	waiting := providers.CanonicalPlayerScore{
		PlayerName: "Rory McIlroy",
		TotalToPar: -6,
		Thru:       providers.Thru{State: providers.ThruNotStarted, TeeTime: "1:35 PM"},
	}
	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status: "active",
		Scores: []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -4), waiting},
	}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	_, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	// the waiting entrant still ranks for display but holds no money
	rory := entrantRow(t, db, tournament.ID, "Rory McIlroy")
	assert.Equal(t, 1, rory.Position)
	assert.Equal(t, 0.0, rory.PrizeMoney)

	scottie := entrantRow(t, db, tournament.ID, "Scottie Scheffler")
	assert.Equal(t, 1000.0, scottie.PrizeMoney)
}

func TestSyncTournament_CutEntrantsEarnNothing(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	seedPrizeTable(t, db, tournament.ID, 1000, 600)

	cut := providers.CanonicalPlayerScore{
		PlayerName: "Jordan Spieth",
		TotalToPar: 6,
		Thru:       providers.Thru{State: providers.ThruFinished, Holes: 18},
		Status:     "cut",
	}
	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status: "active",
		Scores: []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -4), cut},
	}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	_, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	// the cut entrant keeps a display rank but never holds tier money, and
	// the stored flag reflects the missed cut
	spieth := entrantRow(t, db, tournament.ID, "Jordan Spieth")
	assert.Equal(t, 2, spieth.Position)
	assert.Equal(t, 0.0, spieth.PrizeMoney)
	assert.False(t, spieth.MadeCut)

	scottie := entrantRow(t, db, tournament.ID, "Scottie Scheffler")
	assert.Equal(t, 1000.0, scottie.PrizeMoney)
	assert.True(t, scottie.MadeCut)
}

func TestRecomputeWinnings_MatchesSyncEligibility(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	seedPrizeTable(t, db, tournament.ID, 1000, 600)

	waiting := providers.CanonicalPlayerScore{
		PlayerName: "Rory McIlroy",
		TotalToPar: -6,
		Thru:       providers.Thru{State: providers.ThruNotStarted, TeeTime: "1:35 PM"},
	}
	cut := providers.CanonicalPlayerScore{
		PlayerName: "Jordan Spieth",
		TotalToPar: 5,
		Thru:       providers.Thru{State: providers.ThruFinished, Holes: 18},
		Status:     "cut",
	}
	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status: "active",
		Scores: []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -4), waiting, cut},
	}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	_, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)
	require.NoError(t, syncService.RecomputeWinnings(context.Background(), tournament))

	// repricing from stored rows lands on the same paid population as the
	// sync itself: waiting and cut entrants hold zero despite their stored
	// display positions
	assert.Equal(t, 0.0, entrantRow(t, db, tournament.ID, "Rory McIlroy").PrizeMoney)
	assert.Equal(t, 0.0, entrantRow(t, db, tournament.ID, "Jordan Spieth").PrizeMoney)
	assert.Equal(t, 1000.0, entrantRow(t, db, tournament.ID, "Scottie Scheffler").PrizeMoney)
}

func TestSyncTournament_FreshSnapshotSkipsProvider(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	tournament.ExternalEventID = "014"

	store := newFakeStore()
	fresh := &providers.LeaderboardSnapshot{
		EventID:   "014",
		Season:    2025,
		Status:    "active",
		Scores:    []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -3)},
		FetchedAt: time.Now(),
	}
	require.NoError(t, NewSnapshotCache(store, 5*time.Minute, testLogger()).Put(context.Background(), fresh))

	provider := &fakeProvider{snapshot: fresh}
	syncService := newTestSync(db, provider, store, &fakeInvalidator{})

	result, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	// a snapshot within its TTL answers the sync without spending a request
	assert.Zero(t, provider.calls)
	assert.Equal(t, "fresh_cache", result.Source)
	assert.False(t, result.Degraded)
	assert.Equal(t, 1, entrantRow(t, db, tournament.ID, "Scottie Scheffler").Position)
}

func TestSyncTournament_StaleFallback(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	tournament.ExternalEventID = "014"

	store := newFakeStore()
	log := testLogger()
	stale := &providers.LeaderboardSnapshot{
		EventID:   "014",
		Season:    2025,
		Status:    "active",
		Scores:    []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -3)},
		FetchedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, NewSnapshotCache(store, 5*time.Minute, log).Put(context.Background(), stale))

	provider := &fakeProvider{err: errors.New("upstream 503")}
	syncService := newTestSync(db, provider, store, &fakeInvalidator{})

	result, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, "stale_cache", result.Source)
	assert.NotEmpty(t, result.SnapshotAge)
	assert.Equal(t, 1, entrantRow(t, db, tournament.ID, "Scottie Scheffler").Position)
}

func TestSyncTournament_NoFallbackAvailable(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)

	provider := &fakeProvider{err: errors.New("upstream 503")}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	_, err := syncService.SyncTournament(context.Background(), tournament, true)
	assert.Error(t, err)
}

func TestSyncTournament_GateSkipsWithoutForce(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)
	tournament.Status = models.TournamentCompleted

	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{Status: "completed"}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	result, err := syncService.SyncTournament(context.Background(), tournament, false)
	require.NoError(t, err)

	assert.False(t, result.Polled)
	assert.NotEmpty(t, result.Reason)
	assert.Zero(t, provider.calls)
}

func TestSyncTournament_StatusTransition(t *testing.T) {
	db := newTestDB(t)
	tournament := seedTournament(t, db, 2025)

	provider := &fakeProvider{snapshot: &providers.LeaderboardSnapshot{
		Status:       "completed",
		CurrentRound: 4,
		Scores:       []providers.CanonicalPlayerScore{playing("Scottie Scheffler", -12)},
	}}
	syncService := newTestSync(db, provider, newFakeStore(), &fakeInvalidator{})

	_, err := syncService.SyncTournament(context.Background(), tournament, true)
	require.NoError(t, err)

	var reloaded models.Tournament
	require.NoError(t, db.First(&reloaded, "id = ?", tournament.ID).Error)
	assert.Equal(t, models.TournamentCompleted, reloaded.Status)
	assert.Equal(t, 4, reloaded.CurrentRound)
}

func TestBatchRecords(t *testing.T) {
	records := make([]models.TournamentPlayer, 7)

	batches := batchRecords(records, 3)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)
}

func TestBatchRecords_Empty(t *testing.T) {
	assert.Nil(t, batchRecords(nil, 3))
}
