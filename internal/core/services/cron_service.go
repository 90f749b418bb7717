package services

import (
	"context"
	"log"
	"time"

	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/schedule"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs the scheduled maintenance jobs: nightly purge of
// expired refresh tokens and the morning maraude digest email.
type CronService struct {
	cron            *cron.Cron
	refreshRepo     repositories.RefreshTokenRepository
	associationRepo repositories.AssociationRepository
	maraudeRepo     *repositories.MaraudeRepository
	userRepo        repositories.UserRepository
	notifyService   *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB, notifyService *NotificationService) *CronService {
	return &CronService{
		cron:            cron.New(),
		refreshRepo:     repositories.NewRefreshTokenRepository(db),
		associationRepo: repositories.NewAssociationRepository(db),
		maraudeRepo:     repositories.NewMaraudeRepository(db),
		userRepo:        repositories.NewUserRepository(db),
		notifyService:   notifyService,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 7 * * *", s.sendDailyDigests); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("⏰ Cron service started (token purge 03:00, daily digest 07:30)")
	return nil
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Cron service stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx := context.Background()
	if err := s.refreshRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Token purge failed: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens purged")
}

// sendDailyDigests mails each active association's coordinators the
// maraudes happening today
func (s *CronService) sendDailyDigests() {
	if !s.notifyService.IsEnabled() {
		return
	}

	ctx := context.Background()
	associations, err := s.associationRepo.ListActive(ctx)
	if err != nil {
		log.Printf("❌ Daily digest failed to list associations: %v", err)
		return
	}

	for _, association := range associations {
		actions, err := s.maraudeRepo.ListByAssociationActive(ctx, association.ID)
		if err != nil {
			log.Printf("❌ Daily digest failed for association %d: %v", association.ID, err)
			continue
		}

		today := actions[:0:0]
		now := time.Now()
		for _, action := range actions {
			if schedule.IsHappeningToday(action, now) {
				today = append(today, action)
			}
		}
		if len(today) == 0 {
			continue
		}

		coordinators, err := s.userRepo.ListCoordinators(ctx, association.ID)
		if err != nil {
			log.Printf("❌ Daily digest failed for association %d: %v", association.ID, err)
			continue
		}
		recipients := make([]string, 0, len(coordinators))
		for _, u := range coordinators {
			recipients = append(recipients, u.Email)
		}

		if err := s.notifyService.SendDailyDigest(ctx, today, recipients); err != nil {
			log.Printf("❌ Daily digest send failed for association %d: %v", association.ID, err)
			continue
		}
		log.Printf("📬 Daily digest sent: association=%d actions=%d recipients=%d", association.ID, len(today), len(recipients))
	}
}
