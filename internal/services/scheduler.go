package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Schless09/Fore-cast-sub001/internal/models"
	"github.com/Schless09/Fore-cast-sub001/pkg/database"
)

// SchedulerService drives periodic leaderboard syncs. Tournaments are
// synced one at a time; only one event is ever live on tour, and sequential
// runs keep the external request budget predictable.
type SchedulerService struct {
	db           *database.DB
	sync         *SyncService
	logger       *logrus.Logger
	cron         *cron.Cron
	mu           sync.Mutex
	isRunning    bool
	syncInterval time.Duration
}

// NewSchedulerService creates a scheduler service
func NewSchedulerService(
	db *database.DB,
	syncService *SyncService,
	logger *logrus.Logger,
	syncInterval time.Duration,
) *SchedulerService {
	return &SchedulerService{
		db:           db,
		sync:         syncService,
		logger:       logger,
		cron:         cron.New(),
		syncInterval: syncInterval,
	}
}

// Start begins the scheduled syncing
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.syncInterval.String())
	_, err := s.cron.AddFunc(schedule, s.syncAll)
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	// Catch tournaments whose start date arrived overnight
	_, err = s.cron.AddFunc("0 6 * * *", s.activateStarting)
	if err != nil {
		return fmt.Errorf("failed to schedule activation check: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.syncAll()

	s.logger.Info("Scheduler service started")
	return nil
}

// Stop halts the scheduled syncing
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Scheduler service stopped")
}

// syncAll runs the pipeline over every tournament that could be live. The
// polling window gate inside the sync service decides which of them spend
// a provider request.
func (s *SchedulerService) syncAll() {
	var tournaments []models.Tournament
	err := s.db.Where("status = ?", models.TournamentActive).
		Or("status = ? AND start_date <= ?", models.TournamentUpcoming, time.Now()).
		Find(&tournaments).Error
	if err != nil {
		s.logger.Errorf("Failed to load tournaments for sync: %v", err)
		return
	}
	if len(tournaments) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for i := range tournaments {
		tournament := &tournaments[i]
		if _, err := s.sync.SyncTournament(ctx, tournament, false); err != nil {
			s.logger.WithField("tournament", tournament.Name).Errorf("Sync failed: %v", err)
		}
	}
}

// activateStarting flips tournaments whose start date has passed into the
// active state so the sync loop picks them up
func (s *SchedulerService) activateStarting() {
	result := s.db.Model(&models.Tournament{}).
		Where("status = ? AND start_date <= ?", models.TournamentUpcoming, time.Now()).
		Update("status", models.TournamentActive)
	if result.Error != nil {
		s.logger.Errorf("Failed to activate starting tournaments: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		s.logger.Infof("Activated %d starting tournaments", result.RowsAffected)
	}
}
