package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/strategiert/lernwelt-api/internal/metrics"
)

// TaskRunnerConfig configures the background task runner.
type TaskRunnerConfig struct {
	// WorkerCount is the number of concurrent workers.
	WorkerCount int

	// QueueSize bounds the in-memory task buffer.
	QueueSize int

	// StuckTaskAge is how long a task may sit in processing before the
	// monitor assumes its worker died and resets it.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval is the monitor's polling interval.
	// Defaults to 5 minutes when zero.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns the settings the server uses unless
// configuration overrides them.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner owns the full lifecycle of background tasks: persistence
// on submit, worker dispatch, status bookkeeping, crash recovery and
// stuck-task resets. Design generation is its only current workload,
// but it is task-type agnostic.
type TaskRunner struct {
	store      TaskStore
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the default log-only failure handler.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit persists the task and hands it to the workers. Persist-first
// ordering means a task accepted here survives a crash: recovery
// requeues anything the workers never finished.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start recovers unfinished tasks from the store, then launches the
// workers and the stuck-task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop signals all goroutines and waits for in-flight tasks to finish.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover requeues tasks left over from a previous process: pending
// tasks go straight back to the queue, processing tasks are reset to
// pending first since their worker no longer exists.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, t := range pending {
		r.requeue(t, "pending")
	}

	for _, t := range processing {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task",
				"task_id", t.ID(),
				"task_type", t.Type(),
				"error", err)
			continue
		}
		r.requeue(t, "processing")
	}

	return nil
}

func (r *TaskRunner) requeue(t Task, origin string) {
	select {
	case r.taskChan <- t:
	default:
		r.logger.Error("queue full, task not requeued",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"origin", origin)
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("worker started", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("worker stopping", "worker_id", id)
			return
		case t, ok := <-r.taskChan:
			if !ok {
				r.logger.Debug("task channel closed, worker stopping", "worker_id", id)
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask drives one task through its status transitions. Status
// writes are best-effort: a failed update is logged but does not abort
// execution, the stuck-task monitor catches the inconsistency later.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to mark task processing", "error", err)
		return
	}

	logger.Info("processing task")

	if err := t.Execute(ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		metrics.TaskExecutions.WithLabelValues(t.Type(), "failed").Inc()
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to mark task failed", "error", updateErr)
		}
		r.errHandler(t, err)
		return
	}

	logger.Info("task completed")
	metrics.TaskExecutions.WithLabelValues(t.Type(), "completed").Inc()
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to mark task completed", "error", err)
	}
}

// stuckTaskMonitor resets tasks that stayed in processing longer than
// StuckTaskAge and puts them back in the queue.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("stuck task check failed", "error", err)
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("resetting stuck tasks", "count", len(stuck))
			for _, t := range stuck {
				if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task",
						"task_id", t.ID(),
						"task_type", t.Type(),
						"error", err)
					continue
				}
				r.requeue(t, "stuck")
			}
		}
	}
}
