// Package scheduler runs the periodic catalog import on a cron schedule.
// The scheduler only enqueues tasks; the actual reconciliation happens on
// the task queue's worker pool.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mkadlec/bookcatalog/internal/config"
	"github.com/mkadlec/bookcatalog/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ImportScheduler enqueues a catalog import task on a standard 5-field cron
// schedule.
type ImportScheduler struct {
	taskClient *tasks.Client
	config     config.Import

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewImportScheduler(taskClient *tasks.Client, cfg config.Import) *ImportScheduler {
	return &ImportScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler. An empty schedule or missing import file
// disables it without error.
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.Schedule == "" {
		log.Printf("Import scheduler: no schedule configured, disabled")
		return nil
	}
	if s.config.File == "" {
		log.Printf("Import scheduler: no import file configured, disabled")
		return nil
	}

	if _, err := cronParser.Parse(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	file := s.config.File
	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueueImport(file)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule import job: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Import scheduler: started with schedule %q for %s", s.config.Schedule, file)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running enqueue to
// finish.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Import scheduler: stopped")
}

func (s *ImportScheduler) enqueueImport(file string) {
	_, err := s.taskClient.Add(tasks.CatalogImportTask{File: file}).Save()
	if err != nil {
		log.Printf("Import scheduler: failed to enqueue import: %v", err)
		return
	}
	log.Printf("Import scheduler: enqueued catalog import for %s", file)
}
