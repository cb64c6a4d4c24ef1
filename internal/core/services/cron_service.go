package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService schedules the nightly ledger reconciliation audit
type CronService struct {
	cron         *cron.Cron
	reconcileSvc *ReconcileService
}

// NewCronService creates a new cron service
func NewCronService(reconcileSvc *ReconcileService) *CronService {
	return &CronService{
		cron:         cron.New(),
		reconcileSvc: reconcileSvc,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Nightly at 02:00
	_, err := s.cron.AddFunc("0 2 * * *", s.runReconciliation)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron started: nightly ledger reconciliation at 02:00")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron stopped")
}

func (s *CronService) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.reconcileSvc.Run(ctx); err != nil {
		log.Printf("❌ Ledger reconciliation failed: %v", err)
	}
}
