// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"visa-workers/internal/common/config"
	"visa-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobWorkerOpener is the part of zbc.Client needed to open job workers.
type JobWorkerOpener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ JobWorkerOpener = zbc.Client(nil)

// WorkerGroup opens job workers and closes them together on shutdown.
type WorkerGroup struct {
	client JobWorkerOpener
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerGroup(client JobWorkerOpener, log logger.Logger) *WorkerGroup {
	return &WorkerGroup{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled in config.
func (g *WorkerGroup) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		g.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jw := g.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType).
		Open()

	g.mu.Lock()
	g.workers[taskType] = jw
	g.mu.Unlock()

	g.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Running returns the task types with an open worker.
func (g *WorkerGroup) Running() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.workers))
	for taskType := range g.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs up to timeout.
func (g *WorkerGroup) Close(timeout time.Duration) {
	g.mu.Lock()
	workers := g.workers
	g.workers = make(map[string]worker.JobWorker)
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for taskType, jw := range workers {
			wg.Add(1)
			go func(taskType string, jw worker.JobWorker) {
				defer wg.Done()
				jw.Close()
				jw.AwaitClose()
				g.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
			}(taskType, jw)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		g.logger.Warn("timed out waiting for workers to stop", map[string]interface{}{"timeout": timeout.String()})
	}
}
