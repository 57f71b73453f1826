package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService runs the scheduled booking maintenance jobs
type CronService struct {
	bookingService *BookingService
	sweepSpec      string
	cron           *cron.Cron
	logger         *logrus.Logger
}

// NewCronService creates a new cron service
func NewCronService(bookingService *BookingService, sweepSpec string, logger *logrus.Logger) *CronService {
	return &CronService{
		bookingService: bookingService,
		sweepSpec:      sweepSpec,
		cron:           cron.New(cron.WithSeconds()),
		logger:         logger,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.sweepSpec, s.runCompletionSweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.sweepSpec).Info("Booking completion sweep scheduled")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) runCompletionSweep() {
	if _, err := s.bookingService.CompleteElapsed(time.Now().UTC()); err != nil {
		s.logger.WithField("error", err.Error()).Error("Booking completion sweep failed")
	}
}
