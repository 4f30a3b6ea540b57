package cron

import (
	"InsightLedger/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine   *cron.Cron
	syncJob  *job.InsightSyncJob
	schedule string
	enabled  bool
}

func NewCronManager(syncJob *job.InsightSyncJob, schedule string, enabled bool) *Manager {
	return &Manager{
		// 上一轮未结束时跳过本轮
		engine:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		syncJob:  syncJob,
		schedule: schedule,
		enabled:  enabled,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if !s.enabled {
		log.Info("Scheduled sync disabled")
		return nil
	}
	if _, err := s.engine.AddJob(s.schedule, s.syncJob); err != nil {
		return err
	}
	log.Info("Scheduled sync registered", "schedule", s.schedule)
	return nil
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
