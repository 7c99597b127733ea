package concurrent

import (
	"context"
	"sync"
	"time"

	"cookingsecret/pkg/logger"
)

// Job is one unit of background work. Run receives the pool's context, which
// is cancelled by Stop.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type WorkerPool struct {
	numWorkers     int
	jobQueue       chan Job
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
	logger         logger.Logger
	started        bool
	mutex          sync.Mutex
	statsCollector *StatsCollector
}

func NewWorkerPool(numWorkers int, queueSize int, logger logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers:     numWorkers,
		jobQueue:       make(chan Job, queueSize),
		ctx:            ctx,
		cancel:         cancel,
		logger:         logger,
		statsCollector: NewStatsCollector(),
	}
}

func (wp *WorkerPool) Start() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if wp.started {
		return
	}

	wp.logger.Info("Worker pool starting", map[string]interface{}{
		"num_workers": wp.numWorkers,
		"queue_size":  cap(wp.jobQueue),
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		workerID := i
		go func() {
			defer wp.wg.Done()
			wp.worker(workerID)
		}()
	}

	wp.started = true
}

// Stop cancels running jobs, discards queued ones and waits for the workers
// to exit. A stopped pool cannot be restarted.
func (wp *WorkerPool) Stop() {
	wp.mutex.Lock()
	if !wp.started {
		wp.mutex.Unlock()
		return
	}
	wp.started = false
	wp.cancel()
	close(wp.jobQueue)
	wp.mutex.Unlock()

	wp.logger.Info("Worker pool stopping", map[string]interface{}{})
	wp.wg.Wait()
}

// Submit queues job without blocking. It reports false when the pool is not
// running or the queue is full.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if !wp.started {
		wp.statsCollector.jobRejected()
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.statsCollector.jobSubmitted()
		return true
	default:
		wp.statsCollector.jobRejected()
		wp.logger.Warn("Job queue full, job rejected", map[string]interface{}{"job": job.Name})
		return false
	}
}

func (wp *WorkerPool) worker(id int) {
	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			startTime := time.Now()
			err := job.Run(wp.ctx)
			processingTime := time.Since(startTime)
			wp.statsCollector.jobFinished(processingTime, err)

			if err != nil {
				wp.logger.Error("Job failed", map[string]interface{}{
					"worker_id":       id,
					"job":             job.Name,
					"error":           err.Error(),
					"processing_time": processingTime.String(),
				})
				continue
			}

			wp.logger.Debug("Job completed", map[string]interface{}{
				"worker_id":       id,
				"job":             job.Name,
				"processing_time": processingTime.String(),
			})
		}
	}
}

func (wp *WorkerPool) GetStats() Stats {
	stats := wp.statsCollector.GetStats()
	stats.QueueLength = len(wp.jobQueue)
	stats.QueueCapacity = cap(wp.jobQueue)
	return stats
}
