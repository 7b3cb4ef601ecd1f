package systems

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// JobSystem runs jobs on a fixed pool of workers. Two queues are kept and
// the high-priority one is always drained first.
type JobSystem struct {
	numWorkers  int
	highQueue   chan metadata.JobTask
	normalQueue chan metadata.JobTask
	wg          sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")
var ErrMissingJobEntryPoint = errors.New("job has no OnStart function")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers:  numWorkers,
		highQueue:   make(chan metadata.JobTask, channelSize),
		normalQueue: make(chan metadata.JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go js.worker()
	}
}

func (js *JobSystem) worker() {
	defer js.wg.Done()

	high, normal := js.highQueue, js.normalQueue
	for high != nil || normal != nil {
		select {
		case job, ok := <-high:
			if !ok {
				high = nil
				continue
			}
			js.run(job)
			continue
		default:
		}

		select {
		case job, ok := <-high:
			if !ok {
				high = nil
				continue
			}
			js.run(job)
		case job, ok := <-normal:
			if !ok {
				normal = nil
				continue
			}
			js.run(job)
		}
	}
}

func (js *JobSystem) run(job metadata.JobTask) {
	resultChan := make(chan interface{}, 1)
	// Run the job and handle potential errors
	if err := job.OnStart(job.InputParams, resultChan); err != nil {
		core.LogError("%s", err)
		if job.OnFailure != nil {
			job.OnFailure(resultChan)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(resultChan)
	}

	// Call the completion callback if set
	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run before the
 * workers exit.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.highQueue)
	close(js.normalQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue for the job's priority is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return ErrMissingJobEntryPoint
	}

	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}

	if jt.Priority == metadata.JOB_PRIORITY_HIGH {
		js.highQueue <- jt
	} else {
		js.normalQueue <- jt
	}
	return nil
}
