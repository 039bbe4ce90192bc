package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lysyi3m/weather-advices/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 2 * time.Minute

type Scheduler struct {
	configCache *feed.ConfigCache
	reporter    Reporter
	store       *ReportStore
	clock       clockwork.Clock
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, reporter Reporter, store *ReportStore,
	clock clockwork.Clock, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Scheduler{
		configCache: configCache,
		reporter:    reporter,
		store:       store,
		clock:       clock,
		interval:    interval,
		workerCount: max(workerCount, 1),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := s.clock.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.Chan():
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels the workers and waits for them. The queue stays open so a late
// EnqueueTask returns the context error instead of panicking.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	zoneConfigs := s.configCache.GetEnabledConfigs()
	if len(zoneConfigs) == 0 {
		slog.Debug("No enabled zone configurations found")
		return
	}

	slog.Debug("Scheduling zone refresh", "count", len(zoneConfigs))

	for _, zoneConfig := range zoneConfigs {
		task := NewRefreshZoneTask(zoneConfig, s.reporter, s.store, s.clock)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue RefreshZoneTask", "zone", zoneConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"zone", task.GetZoneName(),
			"duration", task.GetDuration(),
			"error", err)
	}
}
