package refresh

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/Techne-Finance/techne-sub000/internal/logger"
)

// Scheduler запускає refresh service за cron розкладом
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
	log      *logger.Logger
}

// NewScheduler створює новий scheduler
func NewScheduler(service *Service, schedule string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		service:  service,
		schedule: schedule,
		log:      log.Named("scheduler"),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.service.Run(context.Background()); err != nil {
			s.log.Error("Scheduled refresh error: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Refresh scheduler started (%s)", s.schedule)

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("Refresh scheduler stopped")
}

// RunNow виконує цикл негайно (startup warm-up)
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.service.Run(ctx)
}
