package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron       *cron.Cron
	docService *DocumentService
	appService *ApplicationService
	conService *ContributionService
}

// NewCronService creates a new cron service
func NewCronService(
	docService *DocumentService,
	appService *ApplicationService,
	conService *ContributionService,
) *CronService {
	return &CronService{
		cron:       cron.New(),
		docService: docService,
		appService: appService,
		conService: conService,
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() error {
	// Expire overdue documents every morning
	if _, err := s.cron.AddFunc("30 8 * * *", s.expireDocuments); err != nil {
		return err
	}

	// Daily digest of pending review work
	if _, err := s.cron.AddFunc("0 9 * * *", s.pendingWorkDigest); err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("⏰ Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("⏰ Cron service stopped")
}

func (s *CronService) expireDocuments() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.docService.ExpireOverdue(ctx); err != nil {
		logrus.Errorf("❌ Document expiry sweep failed: %v", err)
	}
}

func (s *CronService) pendingWorkDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	apps, err := s.appService.CountPending(ctx)
	if err != nil {
		logrus.Errorf("❌ Pending application count failed: %v", err)
		return
	}
	contribs, err := s.conService.CountPending(ctx)
	if err != nil {
		logrus.Errorf("❌ Pending contribution count failed: %v", err)
		return
	}

	logrus.Infof("📊 Review queue: %d applications, %d contributions pending", apps, contribs)
}
